package config

import (
	"errors"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type Config struct {
	HTTPAddr        string
	DBDSN           string
	JWTIssuer       string
	JWTSecret       string
	JWTTTL          time.Duration
	WebSocketOrigin string
	StartingBalance decimal.Decimal
	TickInterval    time.Duration
	AdminEmail      string
	AdminPassword   string
	LogLevel        string
}

func Load() (Config, error) {
	var c Config
	var missing []string
	c.HTTPAddr = os.Getenv("HTTP_ADDR")
	if c.HTTPAddr == "" {
		missing = append(missing, "HTTP_ADDR")
	}
	c.DBDSN = os.Getenv("DB_DSN")
	if c.DBDSN == "" {
		missing = append(missing, "DB_DSN")
	}
	c.JWTIssuer = os.Getenv("JWT_ISSUER")
	if c.JWTIssuer == "" {
		missing = append(missing, "JWT_ISSUER")
	}
	c.JWTSecret = os.Getenv("JWT_SECRET")
	if c.JWTSecret == "" {
		missing = append(missing, "JWT_SECRET")
	}
	jwtTTL := os.Getenv("JWT_TTL")
	if jwtTTL == "" {
		c.JWTTTL = time.Hour
	} else {
		d, err := time.ParseDuration(jwtTTL)
		if err != nil {
			return c, err
		}
		c.JWTTTL = d
	}
	c.WebSocketOrigin = os.Getenv("WS_ORIGIN")
	if c.WebSocketOrigin == "" {
		c.WebSocketOrigin = "*"
	}
	starting := os.Getenv("STARTING_BALANCE")
	if starting == "" {
		starting = "100000"
	}
	bal, err := decimal.NewFromString(starting)
	if err != nil || bal.IsNegative() {
		return c, errors.New("invalid STARTING_BALANCE")
	}
	c.StartingBalance = bal
	tick := os.Getenv("TICK_INTERVAL")
	if tick == "" {
		c.TickInterval = 5 * time.Second
	} else {
		d, err := time.ParseDuration(tick)
		if err != nil || d <= 0 {
			return c, errors.New("invalid TICK_INTERVAL")
		}
		c.TickInterval = d
	}
	c.AdminEmail = strings.TrimSpace(os.Getenv("ADMIN_EMAIL"))
	c.AdminPassword = os.Getenv("ADMIN_PASSWORD")
	c.LogLevel = strings.ToLower(strings.TrimSpace(os.Getenv("LOG_LEVEL")))
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if len(missing) > 0 {
		return c, errors.New("missing required env: " + strings.Join(missing, ","))
	}
	return c, nil
}
