package utils

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/brightpools/charity-draw-backend/internal/config"
	"github.com/brightpools/charity-draw-backend/internal/models"
	"github.com/golang-jwt/jwt/v5"
)

const monthYearLayout = "January 2006"

// ParseMonthYear parses a cycle label like "January 2025" into the first of
// that month in UTC.
func ParseMonthYear(label string) (time.Time, error) {
	t, err := time.Parse(monthYearLayout, strings.TrimSpace(label))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid month-year label %q: %w", label, err)
	}
	return t, nil
}

// FormatMonthYear renders a time as a cycle label
func FormatMonthYear(t time.Time) string {
	return t.Format(monthYearLayout)
}

// NextMonthYear returns the label of the month after the given label
func NextMonthYear(label string) (string, error) {
	t, err := ParseMonthYear(label)
	if err != nil {
		return "", err
	}
	return FormatMonthYear(t.AddDate(0, 1, 0)), nil
}

// MonthYearInFuture reports whether the labeled month starts after the month
// containing `now`.
func MonthYearInFuture(label string, now time.Time) (bool, error) {
	t, err := ParseMonthYear(label)
	if err != nil {
		return false, err
	}
	currentMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	return t.After(currentMonth), nil
}

// GenerateJWT mints an admin session token
func GenerateJWT(admin *models.AdminUser, cfg *config.Config) (string, error) {
	claims := jwt.MapClaims{
		"sub":   admin.ID.Hex(),
		"email": admin.Email,
		"role":  admin.Role,
		"exp":   time.Now().Add(time.Second * time.Duration(cfg.JWT.ExpiresIn)).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(cfg.JWT.Secret))
}

// ValidateJWT parses and validates an admin session token
func ValidateJWT(tokenString string, cfg *config.Config) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(cfg.JWT.Secret), nil
	})
	if err != nil {
		return nil, err
	}
	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, errors.New("invalid token")
}
