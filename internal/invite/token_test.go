package invite_test

import (
	"testing"
	"time"

	"collabs/internal/invite"
	"collabs/internal/model"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestTokenCodec_SignAndVerify(t *testing.T) {
	// Arrange
	codec := invite.NewTokenCodec("invite-test-secret")
	projectID := uuid.New()

	// Act
	token, err := codec.Sign("bob@x.com", projectID, model.RoleMember)
	assert.NoError(t, err)

	claims, err := codec.Verify(token)

	// Assert
	assert.NoError(t, err)
	assert.Equal(t, "bob@x.com", claims.Email)
	assert.Equal(t, projectID, claims.ProjectID)
	assert.Equal(t, model.RoleMember, claims.Role)
	// Окно действия — 7 дней
	assert.WithinDuration(t, time.Now().Add(invite.Validity), claims.ExpiresAt.Time, time.Minute)
}

func TestTokenCodec_Verify_Expired(t *testing.T) {
	// Arrange: токен с истекшим сроком, подписанный тем же секретом
	secret := "invite-test-secret"
	codec := invite.NewTokenCodec(secret)

	claims := invite.Claims{
		Email:     "bob@x.com",
		ProjectID: uuid.New(),
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-8 * 24 * time.Hour)),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-24 * time.Hour)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	expired, _ := token.SignedString([]byte(secret))

	// Act
	_, err := codec.Verify(expired)

	// Assert: истечение — отдельная ошибка, не общий invalid
	assert.ErrorIs(t, err, invite.ErrExpiredToken)
}

func TestTokenCodec_Verify_TamperedToken(t *testing.T) {
	// Arrange
	codec := invite.NewTokenCodec("invite-test-secret")
	token, _ := codec.Sign("bob@x.com", uuid.New(), model.RoleMember)

	// Act: портим подпись
	_, err := codec.Verify(token + "x")

	// Assert
	assert.ErrorIs(t, err, invite.ErrInvalidToken)
}

func TestTokenCodec_Verify_ForeignSecret(t *testing.T) {
	// Arrange: токен, подписанный чужим секретом
	foreign := invite.NewTokenCodec("another-secret")
	token, _ := foreign.Sign("bob@x.com", uuid.New(), model.RoleAdmin)

	codec := invite.NewTokenCodec("invite-test-secret")

	// Act
	_, err := codec.Verify(token)

	// Assert
	assert.ErrorIs(t, err, invite.ErrInvalidToken)
}

func TestTokenCodec_Verify_GarbageString(t *testing.T) {
	// Arrange
	codec := invite.NewTokenCodec("invite-test-secret")

	// Act
	_, err := codec.Verify("not-a-jwt-at-all")

	// Assert
	assert.ErrorIs(t, err, invite.ErrInvalidToken)
}
