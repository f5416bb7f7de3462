package user

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var (
	ErrPhoneTaken      = errors.New("this phone number is already registered")
	ErrInvalidOTP      = errors.New("otp code is invalid or expired")
	ErrTooManyRequests = errors.New("too many otp requests, try again later")
	ErrAccountBanned   = errors.New("account is banned")
)

const (
	otpCodePrefix     = "auth:otp:code:"
	otpAttemptsPrefix = "auth:otp:attempts:"

	otpCodeTTL      = 2 * time.Minute
	otpAttemptsTTL  = 10 * time.Minute
	otpMaxAttempts  = 5
	otpCodeLength   = 4
	blacklistMargin = time.Minute
)

type UserService interface {
	SignUp(ctx context.Context, phoneNumber, password, firstName, lastName string, role Role) (User, error)
	RequestOTP(ctx context.Context, phoneNumber string) error
	LoginWithOTP(ctx context.Context, phoneNumber, code string) (User, string, error)
	Logout(ctx context.Context, claims Claims) error
	Profile(ctx context.Context, userID uuid.UUID) (User, error)
}

type userService struct {
	repo      UserRepository
	rdb       *redis.Client
	sms       SMSSender
	jwtSecret []byte
	jwtTTL    int64
}

func NewUserService(repo UserRepository, rdb *redis.Client, sms SMSSender, jwtSecret []byte, jwtTTLSeconds int64) UserService {
	return &userService{
		repo:      repo,
		rdb:       rdb,
		sms:       sms,
		jwtSecret: jwtSecret,
		jwtTTL:    jwtTTLSeconds,
	}
}

func (s *userService) SignUp(ctx context.Context, phoneNumber, password, firstName, lastName string, role Role) (User, error) {
	phone, err := NormalizePhoneNumber(phoneNumber)
	if err != nil {
		return User{}, err
	}
	if err := ValidatePassword(password); err != nil {
		return User{}, err
	}

	if _, err := s.repo.GetByPhone(ctx, phone); err == nil {
		return User{}, ErrPhoneTaken
	} else if !errors.Is(err, ErrUserNotFound) {
		return User{}, err
	}

	hashed, err := HashPassword(password)
	if err != nil {
		return User{}, err
	}

	if role != RoleCustomer && role != RoleSpecialist {
		role = RoleCustomer
	}

	u := User{
		ID:           uuid.New(),
		PhoneNumber:  phone,
		FirstName:    firstName,
		LastName:     lastName,
		PasswordHash: hashed,
		Role:         role,
		Status:       AccountActive,
		CreatedAt:    time.Now(),
	}
	if err := s.repo.CreateUser(ctx, u); err != nil {
		return User{}, err
	}

	u.PasswordHash = ""
	return u, nil
}

func (s *userService) RequestOTP(ctx context.Context, phoneNumber string) error {
	phone, err := NormalizePhoneNumber(phoneNumber)
	if err != nil {
		return err
	}

	// rate limit по номеру телефона
	attemptsKey := otpAttemptsPrefix + phone
	if cnt, err := s.rdb.Get(ctx, attemptsKey).Int64(); err == nil && cnt >= otpMaxAttempts {
		return ErrTooManyRequests
	}
	val, err := s.rdb.Incr(ctx, attemptsKey).Result()
	if err != nil {
		return err
	}
	if val == 1 {
		_ = s.rdb.Expire(ctx, attemptsKey, otpAttemptsTTL).Err()
	}

	code := GenerateOTP(otpCodeLength)
	if err := s.rdb.Set(ctx, otpCodePrefix+phone, code, otpCodeTTL).Err(); err != nil {
		return err
	}

	// Отправляем SMS асинхронно, не блокируем ответ
	if s.sms != nil {
		go func() {
			sendCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()
			if err := s.sms.SendOTP(sendCtx, phone, code); err != nil {
				log.Printf("failed to send otp sms: %v", err)
			}
		}()
	}

	return nil
}

func (s *userService) LoginWithOTP(ctx context.Context, phoneNumber, code string) (User, string, error) {
	phone, err := NormalizePhoneNumber(phoneNumber)
	if err != nil {
		return User{}, "", err
	}

	key := otpCodePrefix + phone
	stored, err := s.rdb.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return User{}, "", ErrInvalidOTP
		}
		return User{}, "", err
	}
	if stored == "" || stored != code {
		return User{}, "", ErrInvalidOTP
	}
	// Код одноразовый
	_ = s.rdb.Del(ctx, key).Err()

	u, err := s.repo.GetByPhone(ctx, phone)
	if err != nil {
		return User{}, "", err
	}
	if u.Status == AccountBanned {
		return User{}, "", ErrAccountBanned
	}

	if !u.IsPhoneVerified {
		if err := s.repo.MarkPhoneVerified(ctx, u.ID); err != nil {
			return User{}, "", err
		}
		u.IsPhoneVerified = true
	}

	claims := BuildJWTClaims(u, s.jwtTTL)
	token, err := SignToken(claims, s.jwtSecret)
	if err != nil {
		return User{}, "", err
	}

	u.PasswordHash = ""
	return u, token, nil
}

// Logout кладёт jti токена в blacklist до момента его истечения
func (s *userService) Logout(ctx context.Context, claims Claims) error {
	if claims.ID == "" || claims.ExpiresAt == nil {
		return ErrInvalidToken
	}
	ttl := time.Until(claims.ExpiresAt.Time) + blacklistMargin
	if ttl <= 0 {
		return nil
	}
	return s.rdb.Set(ctx, tokenBlacklistPrefix+claims.ID, "1", ttl).Err()
}

func (s *userService) Profile(ctx context.Context, userID uuid.UUID) (User, error) {
	u, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return User{}, err
	}
	u.PasswordHash = ""
	return u, nil
}
