package cfg

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPPort      string
	DBHost        string
	DBPort        string
	DBUser        string
	DBPassword    string
	DBName        string
	RedisAddr     string
	RedisPassword string
	KafkaBrokers  string
	KafkaTopic    string
	JWTSecret     string
	JWTTTL        string
	CORSOrigins   string

	// Faraz SMS (отправка OTP кодов)
	SMSAPIKey       string
	SMSSenderNumber string
	SMSPatternCode  string
	SMSPhoneBookID  string
}

func LoadConfig() Config {
	// Load .env if present (silently continue on error)
	if err := godotenv.Load(); err != nil {
		log.Println(".env not found, using environment variables")
	}

	cfg := Config{
		HTTPPort:      os.Getenv("HTTP_PORT"),
		DBHost:        os.Getenv("DB_HOST"),
		DBPort:        os.Getenv("DB_PORT"),
		DBUser:        os.Getenv("DB_USER"),
		DBPassword:    os.Getenv("DB_PASSWORD"),
		DBName:        os.Getenv("DB_NAME"),
		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		KafkaBrokers:  os.Getenv("KAFKA_BROKERS"),
		KafkaTopic:    os.Getenv("KAFKA_TOPIC"),
		JWTSecret:     os.Getenv("JWT_SECRET"),
		JWTTTL:        os.Getenv("JWT_TTL_SECONDS"),
		CORSOrigins:   os.Getenv("CORS_ALLOWED_ORIGINS"),

		SMSAPIKey:       os.Getenv("FARAZ_SMS_API_KEY"),
		SMSSenderNumber: os.Getenv("FARAZ_SMS_SENDER_NUMBER"),
		SMSPatternCode:  os.Getenv("FARAZ_SMS_LOGIN_OTP_PATTERN_CODE"),
		SMSPhoneBookID:  os.Getenv("FARAZ_SMS_PHONE_BOOK_ID"),
	}

	return cfg
}
