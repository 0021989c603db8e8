package jwt

import (
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"sync"
	"time"

	"github.com/cmlabs-hris/hrpulse-backend-go/internal/domain/user"
	"github.com/go-chi/jwtauth/v5"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

const (
	TokenTypeAccess = "access"
	TokenTypeSSE    = "sse"
)

type Service interface {
	GenerateAccessToken(session user.Session) (token string, expiresAt int64, err error)
	GenerateSSEToken(employeeID string) (token string, expiresIn int, err error)
	ValidateSSEToken(tokenString string) (employeeID string, err error)
	JWTAuth() *jwtauth.JWTAuth
	RevokeToken(token string, expiresAt time.Time)
	IsTokenRevoked(token string) bool
	// RestoreRevoked loads persisted revocations keyed by HashToken
	RestoreRevoked(hashes map[string]time.Time)
	// PruneRevoked forgets revocations of tokens that have expired anyway
	PruneRevoked(now time.Time) int
}

type JWTService struct {
	secretKey                 string
	accessTokenExpirationTime string
	sseTokenExpiration        time.Duration
	tokenAuth                 *jwtauth.JWTAuth
	revokedTokens             map[string]time.Time
	mu                        sync.RWMutex
}

func (j *JWTService) JWTAuth() *jwtauth.JWTAuth {
	return j.tokenAuth
}

func NewJWTService(secretKey string, accessTokenExpirationTime string, sseTokenExpiration time.Duration) Service {
	if sseTokenExpiration <= 0 {
		sseTokenExpiration = 5 * time.Minute
	}
	return &JWTService{
		secretKey:                 secretKey,
		accessTokenExpirationTime: accessTokenExpirationTime,
		sseTokenExpiration:        sseTokenExpiration,
		tokenAuth:                 jwtauth.New("HS256", []byte(secretKey), nil, jwt.WithAcceptableSkew(30*time.Second)),
		revokedTokens:             make(map[string]time.Time),
	}
}

func (j *JWTService) GenerateAccessToken(session user.Session) (token string, expiresAt int64, err error) {
	expDuration, err := time.ParseDuration(j.accessTokenExpirationTime)
	if err != nil {
		return "", 0, err
	}
	expiresAt = time.Now().Add(expDuration).Unix()

	claims := map[string]interface{}{
		"employee_id":   session.EmployeeID,
		"employee_code": session.EmployeeCode,
		"name":          session.Name,
		"role":          string(session.Role),
		"permissions":   user.ScreenStrings(session.Permissions),
		"type":          TokenTypeAccess,
		"exp":           expiresAt,
	}

	_, tokenString, err := j.tokenAuth.Encode(claims)
	return tokenString, expiresAt, err
}

// HashToken is the key revocations are stored under, so raw tokens never hit storage.
func HashToken(token string) string {
	hash := sha256.Sum256([]byte(token))
	return base64.StdEncoding.EncodeToString(hash[:])
}

func (j *JWTService) RevokeToken(token string, expiresAt time.Time) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.revokedTokens[HashToken(token)] = expiresAt
}

func (j *JWTService) IsTokenRevoked(token string) bool {
	j.mu.RLock()
	defer j.mu.RUnlock()
	_, revoked := j.revokedTokens[HashToken(token)]
	return revoked
}

func (j *JWTService) RestoreRevoked(hashes map[string]time.Time) {
	j.mu.Lock()
	defer j.mu.Unlock()
	for hash, exp := range hashes {
		j.revokedTokens[hash] = exp
	}
}

func (j *JWTService) PruneRevoked(now time.Time) int {
	j.mu.Lock()
	defer j.mu.Unlock()
	pruned := 0
	for hash, exp := range j.revokedTokens {
		if !exp.After(now) {
			delete(j.revokedTokens, hash)
			pruned++
		}
	}
	return pruned
}

// GenerateSSEToken generates a short-lived token for SSE connections
func (j *JWTService) GenerateSSEToken(employeeID string) (token string, expiresIn int, err error) {
	expiresIn = int(j.sseTokenExpiration.Seconds())
	expiresAt := time.Now().Add(j.sseTokenExpiration).Unix()

	_, tokenString, err := j.tokenAuth.Encode(map[string]interface{}{
		"employee_id": employeeID,
		"type":        TokenTypeSSE,
		"exp":         expiresAt,
	})
	if err != nil {
		return "", 0, err
	}

	return tokenString, expiresIn, nil
}

// ValidateSSEToken validates an SSE token and returns the employee ID
func (j *JWTService) ValidateSSEToken(tokenString string) (employeeID string, err error) {
	if tokenString == "" {
		return "", errors.New("missing sse token")
	}
	token, err := j.tokenAuth.Decode(tokenString)
	if err != nil {
		return "", err
	}

	// Check token type
	tokenType, ok := token.Get("type")
	if !ok || tokenType != TokenTypeSSE {
		return "", jwt.ErrInvalidJWT()
	}

	idVal, ok := token.Get("employee_id")
	if !ok {
		return "", jwt.ErrInvalidJWT()
	}

	employeeID, ok = idVal.(string)
	if !ok || employeeID == "" {
		return "", jwt.ErrInvalidJWT()
	}

	return employeeID, nil
}

// SessionFromClaims rebuilds the request session from access token claims.
func SessionFromClaims(claims map[string]interface{}, rawToken string) (user.Session, error) {
	if t, _ := claims["type"].(string); t != TokenTypeAccess {
		return user.Session{}, jwt.ErrInvalidJWT()
	}
	employeeID, _ := claims["employee_id"].(string)
	role, _ := claims["role"].(string)
	if employeeID == "" || !user.Role(role).IsValid() {
		return user.Session{}, jwt.ErrInvalidJWT()
	}

	session := user.Session{
		EmployeeID: employeeID,
		Role:       user.Role(role),
		Token:      rawToken,
	}
	if exp, ok := claims["exp"].(time.Time); ok {
		session.ExpiresAt = exp
	}
	session.EmployeeCode, _ = claims["employee_code"].(string)
	session.Name, _ = claims["name"].(string)

	// JSON arrays decode as []interface{}
	if raw, ok := claims["permissions"].([]interface{}); ok {
		values := make([]string, 0, len(raw))
		for _, v := range raw {
			if s, ok := v.(string); ok {
				values = append(values, s)
			}
		}
		session.Permissions = user.ParseScreens(values)
	}
	return session, nil
}
