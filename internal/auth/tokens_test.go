package auth

import (
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestTokenService(t *testing.T) (*TokenService, *fakeClock) {
	t.Helper()
	clock := &fakeClock{t: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)}
	svc, err := NewTokenService(TokenConfig{
		ActivationSecret: "activation-secret",
		AccessSecret:     "access-secret",
		RefreshSecret:    "refresh-secret",
	}, WithClock(clock.Now))
	require.NoError(t, err)
	return svc, clock
}

func testPayload() ActivationPayload {
	return ActivationPayload{Name: "Alice", Email: "a@x.com", Username: "alice", PasswordHash: "hash"}
}

func TestNewTokenService_RequiresSecrets(t *testing.T) {
	_, err := NewTokenService(TokenConfig{AccessSecret: "a", RefreshSecret: "r"})
	assert.Error(t, err)
}

func TestActivationTicket_RoundTrip(t *testing.T) {
	svc, _ := newTestTokenService(t)

	ticket, err := svc.IssueActivationTicket(testPayload())
	require.NoError(t, err)

	payload, err := svc.VerifyActivationTicket(ticket.Token, ticket.Code)
	require.NoError(t, err)
	assert.Equal(t, testPayload(), *payload)
}

func TestActivationTicket_WrongCode(t *testing.T) {
	svc, _ := newTestTokenService(t)

	ticket, err := svc.IssueActivationTicket(testPayload())
	require.NoError(t, err)

	wrong := "1000"
	if ticket.Code == wrong {
		wrong = "1001"
	}
	_, err = svc.VerifyActivationTicket(ticket.Token, wrong)
	assert.ErrorIs(t, err, ErrOTPMismatch)
}

func TestActivationTicket_Expired(t *testing.T) {
	svc, clock := newTestTokenService(t)

	ticket, err := svc.IssueActivationTicket(testPayload())
	require.NoError(t, err)

	clock.Advance(5*time.Minute + time.Second)

	_, err = svc.VerifyActivationTicket(ticket.Token, ticket.Code)
	assert.ErrorIs(t, err, ErrTokenInvalid)

	_, err = svc.DecodeActivationTicket(ticket.Token)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestActivationTicket_Tampered(t *testing.T) {
	svc, _ := newTestTokenService(t)

	ticket, err := svc.IssueActivationTicket(testPayload())
	require.NoError(t, err)

	_, err = svc.VerifyActivationTicket(ticket.Token+"x", ticket.Code)
	assert.ErrorIs(t, err, ErrTokenInvalid)

	_, err = svc.VerifyActivationTicket("", ticket.Code)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestActivationTicket_NotAcceptedAsAccessToken(t *testing.T) {
	svc, _ := newTestTokenService(t)

	ticket, err := svc.IssueActivationTicket(testPayload())
	require.NoError(t, err)

	_, err = svc.ParseAccessToken(ticket.Token)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestGenerateOTP_Range(t *testing.T) {
	for i := 0; i < 500; i++ {
		code, err := GenerateOTP()
		require.NoError(t, err)
		require.Len(t, code, 4)

		n, err := strconv.Atoi(code)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, n, 1000)
		assert.LessOrEqual(t, n, 9999)
	}
}

func TestAccessToken_ExpiredIsDistinct(t *testing.T) {
	svc, clock := newTestTokenService(t)

	token, err := svc.IssueAccessToken("user-1", "farmer")
	require.NoError(t, err)

	claims, err := svc.ParseAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "farmer", claims.Role)

	clock.Advance(16 * time.Minute)
	_, err = svc.ParseAccessToken(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestRefreshToken_CannotBeUsedAsAccess(t *testing.T) {
	svc, _ := newTestTokenService(t)

	refresh, err := svc.IssueRefreshToken("user-1")
	require.NoError(t, err)

	_, err = svc.ParseAccessToken(refresh)
	assert.ErrorIs(t, err, ErrTokenInvalid)

	id, err := svc.ParseRefreshToken(refresh)
	require.NoError(t, err)
	assert.Equal(t, "user-1", id)
}

func TestRefreshToken_ExpiresAfterSevenDays(t *testing.T) {
	svc, clock := newTestTokenService(t)

	refresh, err := svc.IssueRefreshToken("user-1")
	require.NoError(t, err)

	clock.Advance(6 * 24 * time.Hour)
	_, err = svc.ParseRefreshToken(refresh)
	require.NoError(t, err)

	clock.Advance(2 * 24 * time.Hour)
	_, err = svc.ParseRefreshToken(refresh)
	assert.ErrorIs(t, err, ErrTokenExpired)
}
