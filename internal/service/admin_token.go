package service

import (
	"errors"
	"strings"
	"time"

	"github.com/dujiao-next/promo/internal/config"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrAdminTokenInvalid       = errors.New("admin token invalid")
	ErrAdminTokenSecretMissing = errors.New("admin token secret missing")
)

// AdminClaims 管理端 JWT 声明
type AdminClaims struct {
	AdminID  uint   `json:"admin_id"`
	Username string `json:"username"`
	IsSuper  bool   `json:"is_super"`
	jwt.RegisteredClaims
}

// AdminTokenService 管理端令牌签发与校验
// 线上令牌由统一认证服务签发，本服务只负责校验；签发用于本地联调与运维命令
type AdminTokenService struct {
	cfg config.JWTConfig
	now func() time.Time
}

// NewAdminTokenService 创建管理端令牌服务
func NewAdminTokenService(cfg config.JWTConfig) *AdminTokenService {
	return &AdminTokenService{cfg: cfg, now: time.Now}
}

// Issue 签发管理端令牌
func (s *AdminTokenService) Issue(adminID uint, username string, isSuper bool) (string, time.Time, error) {
	if strings.TrimSpace(s.cfg.SecretKey) == "" {
		return "", time.Time{}, ErrAdminTokenSecretMissing
	}
	if adminID == 0 {
		return "", time.Time{}, ErrAdminTokenInvalid
	}
	hours := s.cfg.ExpireHours
	if hours <= 0 {
		hours = 24
	}
	now := s.now()
	expiresAt := now.Add(time.Duration(hours) * time.Hour)

	claims := AdminClaims{
		AdminID:  adminID,
		Username: strings.TrimSpace(username),
		IsSuper:  isSuper,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    strings.TrimSpace(s.cfg.Issuer),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.SecretKey))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// Parse 校验并解析管理端令牌，配置了签发方时要求一致
func (s *AdminTokenService) Parse(tokenString string) (*AdminClaims, error) {
	if strings.TrimSpace(s.cfg.SecretKey) == "" {
		return nil, ErrAdminTokenSecretMissing
	}
	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	}
	if issuer := strings.TrimSpace(s.cfg.Issuer); issuer != "" {
		options = append(options, jwt.WithIssuer(issuer))
	}
	parser := jwt.NewParser(options...)
	claims := &AdminClaims{}
	token, err := parser.ParseWithClaims(strings.TrimSpace(tokenString), claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.cfg.SecretKey), nil
	})
	if err != nil {
		return nil, errors.Join(ErrAdminTokenInvalid, err)
	}
	if !token.Valid || claims.AdminID == 0 {
		return nil, ErrAdminTokenInvalid
	}
	return claims, nil
}
