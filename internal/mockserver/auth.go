package mockserver

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const sessionTTL = 24 * time.Hour

func hashPassword(pass string) ([]byte, error) {
	return bcrypt.GenerateFromPassword([]byte(pass), bcrypt.MinCost)
}

func checkPassword(u *User, pass string) bool {
	if u.hash == nil {
		return false
	}
	return bcrypt.CompareHashAndPassword(u.hash, []byte(pass)) == nil
}

// issueToken signs a session token for uid and registers its id so logout
// can revoke it. mu must be held.
func (s *Server) issueToken(uid string) (string, error) {
	jti := uuid.NewString()
	claims := jwt.MapClaims{
		"user_id": uid,
		"jti":     jti,
		"exp":     time.Now().Add(sessionTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", err
	}
	s.sessions[jti] = uid
	return signed, nil
}

// parseToken returns the session id and user id carried by a signed token.
func (s *Server) parseToken(raw string) (jti, uid string, err error) {
	token, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return "", "", errUnauthorized
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", "", errors.New("invalid claims")
	}
	jti, _ = claims["jti"].(string)
	uid, _ = claims["user_id"].(string)
	if jti == "" || uid == "" {
		return "", "", errUnauthorized
	}
	return jti, uid, nil
}
