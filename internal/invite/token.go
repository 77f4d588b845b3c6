package invite

import (
	"errors"
	"time"

	"collabs/internal/model"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Invite acceptance failures. Each kind implies a different user remedy,
// so they stay distinct all the way to the HTTP layer.
var (
	ErrExpiredToken     = errors.New("the invitation link has expired")
	ErrInvalidToken     = errors.New("the invitation token is invalid")
	ErrIdentityMismatch = errors.New("invite was issued for a different user")
	ErrAlreadyMember    = errors.New("already a member of this project")
	ErrUnknownUser      = errors.New("no account exists for the invited email")
	ErrInvalidRole      = errors.New("unknown role for invite")
)

// Validity — окно действия приглашения
const Validity = 7 * 24 * time.Hour

// Claims — самодостаточное содержимое инвайт-токена. Приглашение не
// хранится на сервере: подпись + свежесть и есть право стать участником.
type Claims struct {
	Email     string     `json:"email"`
	ProjectID uuid.UUID  `json:"project_id"`
	Role      model.Role `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// TokenCodec подписывает и проверяет инвайт-токены. Секрет отдельный от
// сессионного JWT.
type TokenCodec struct {
	secret []byte
}

func NewTokenCodec(secret string) *TokenCodec {
	return &TokenCodec{secret: []byte(secret)}
}

func (c *TokenCodec) Sign(email string, projectID uuid.UUID, role model.Role) (string, error) {
	now := time.Now()
	claims := Claims{
		Email:     email,
		ProjectID: projectID,
		Role:      role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(Validity)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(c.secret)
}

// Verify проверяет подпись и срок действия. Истечение и порча токена —
// разные ошибки: в одном случае нужен новый инвайт, в другом ссылка
// просто битая.
func (c *TokenCodec) Verify(tokenStr string) (*Claims, error) {
	var claims Claims
	token, err := jwt.ParseWithClaims(tokenStr, &claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return c.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Email == "" || claims.ProjectID == uuid.Nil {
		return nil, ErrInvalidToken
	}
	return &claims, nil
}
