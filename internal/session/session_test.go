package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fullSession(expires int64) *Session {
	return &Session{
		Cookies: []Cookie{
			{Name: "c_user", Value: "100001", Expires: expires},
			{Name: "xs", Value: "token", Expires: expires},
			{Name: "datr", Value: "fingerprint", Expires: expires},
			{Name: "fr", Value: "tracking", Expires: expires},
		},
	}
}

func TestValidateComplete(t *testing.T) {
	now := time.Now()
	sess := fullSession(now.Add(24 * time.Hour).Unix())
	assert.NoError(t, sess.Validate(now))
}

func TestValidateIncompleteDistinctFromExpired(t *testing.T) {
	now := time.Now()

	// Missing a required cookie, nothing expired: must report incomplete.
	sess := fullSession(now.Add(24 * time.Hour).Unix())
	sess.Cookies = sess.Cookies[:3] // drop "fr"

	err := sess.Validate(now)
	require.Error(t, err)

	var incomplete *IncompleteError
	require.ErrorAs(t, err, &incomplete)
	assert.Equal(t, []string{"fr"}, incomplete.Missing)

	var expired *ExpiredError
	assert.False(t, errIs(err, &expired), "incomplete session must not report as expired")
}

func errIs(err error, target **ExpiredError) bool {
	e, ok := err.(*ExpiredError)
	if ok {
		*target = e
	}
	return ok
}

func TestValidateExpired(t *testing.T) {
	now := time.Now()
	sess := fullSession(now.Add(-time.Hour).Unix())

	err := sess.Validate(now)
	require.Error(t, err)

	var expired *ExpiredError
	require.ErrorAs(t, err, &expired)
	assert.Len(t, expired.Names, 4)
}

func TestValidateNeverExpires(t *testing.T) {
	now := time.Now()
	sess := fullSession(NeverExpires)
	assert.NoError(t, sess.Validate(now))

	// Zero expiry is treated as a session cookie, also never expired.
	sess = fullSession(0)
	assert.NoError(t, sess.Validate(now))
}

func TestValidateNilOrEmpty(t *testing.T) {
	var sess *Session
	var incomplete *IncompleteError
	require.ErrorAs(t, sess.Validate(time.Now()), &incomplete)
	assert.Equal(t, RequiredCookies, incomplete.Missing)
}

func TestCookieHeader(t *testing.T) {
	sess := &Session{Cookies: []Cookie{
		{Name: "c_user", Value: "1"},
		{Name: "xs", Value: "2"},
	}}
	assert.Equal(t, "c_user=1; xs=2", sess.CookieHeader())
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	sess := fullSession(NeverExpires)
	data, err := sess.Encode()
	require.NoError(t, err)

	decoded, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, sess.Cookies, decoded.Cookies)

	_, err = Decode([]byte("not json"))
	assert.Error(t, err)
}
