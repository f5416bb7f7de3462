package user

import (
	"crypto/rand"
	"errors"
	"math/big"
	"strings"
)

var (
	ErrInvalidPhone    = errors.New("phone number must be 11 digits starting with '09'")
	ErrInvalidPassword = errors.New("password must be at least 6 characters long")
	ErrInvalidName     = errors.New("name must be between 1 and 100 characters")
)

const (
	persianDigits = "۰۱۲۳۴۵۶۷۸۹"
	arabicDigits  = "٠١٢٣٤٥٦٧٨٩"
)

// NormalizePhoneNumber приводит номер к виду 09XXXXXXXXX.
// Персидские и арабские цифры транслируются в латинские, префиксы
// +98 / 98 / 0098 заменяются на 0.
func NormalizePhoneNumber(phone string) (string, error) {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return "", ErrInvalidPhone
	}

	var b strings.Builder
	for _, r := range phone {
		if idx := indexOfRune(persianDigits, r); idx >= 0 {
			b.WriteByte(byte('0' + idx))
			continue
		}
		if idx := indexOfRune(arabicDigits, r); idx >= 0 {
			b.WriteByte(byte('0' + idx))
			continue
		}
		b.WriteRune(r)
	}
	phone = b.String()

	switch {
	case strings.HasPrefix(phone, "+98"):
		phone = "0" + phone[3:]
	case strings.HasPrefix(phone, "0098"):
		phone = "0" + phone[4:]
	case strings.HasPrefix(phone, "98"):
		phone = "0" + phone[2:]
	}

	for _, r := range phone {
		if r < '0' || r > '9' {
			return "", ErrInvalidPhone
		}
	}

	if !strings.HasPrefix(phone, "09") || len(phone) != 11 {
		return "", ErrInvalidPhone
	}

	return phone, nil
}

func indexOfRune(digits string, r rune) int {
	for i, d := range []rune(digits) {
		if d == r {
			return i
		}
	}
	return -1
}

// ValidatePassword проверяет требования к паролю
func ValidatePassword(password string) error {
	if len(password) < 6 || len(password) > 128 {
		return ErrInvalidPassword
	}
	return nil
}

// ValidateName проверяет имя пользователя
func ValidateName(name string) error {
	name = strings.TrimSpace(name)
	if len(name) == 0 || len(name) > 100 {
		return ErrInvalidName
	}
	return nil
}

// GenerateOTP возвращает числовой код заданной длины
func GenerateOTP(length int) string {
	if length <= 0 {
		length = 4
	}
	var b strings.Builder
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			// crypto/rand практически не падает; на всякий случай не зацикливаемся
			b.WriteByte('0')
			continue
		}
		b.WriteByte(byte('0' + n.Int64()))
	}
	return b.String()
}
