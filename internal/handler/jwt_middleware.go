package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// Roles que existen en este demo. Un token con cualquier otro rol se
// rechaza, no se deja pasar como usuario raso.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// claves de contexto privadas: solo JWTAuth arma este contexto, el resto
// del paquete lee vía UserIDFromContext / RoleFromContext.
type ctxKey int

const (
	ctxKeyUserID ctxKey = iota
	ctxKeyRole
)

// JWTAuth valida el Bearer token (HS256, el mismo secreto con el que
// AuthService firma) y deja userId y rol en el contexto del request.
func JWTAuth(secret string) func(http.Handler) http.Handler {
	keyFunc := func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(secret), nil
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := bearerToken(r)
			if !ok {
				http.Error(w, "falta el header Authorization: Bearer <token>", http.StatusUnauthorized)
				return
			}

			claims := jwt.MapClaims{}
			token, err := jwt.ParseWithClaims(raw, claims, keyFunc)
			if err != nil || !token.Valid {
				http.Error(w, "token inválido o expirado", http.StatusUnauthorized)
				return
			}

			// sub llega como float64 por el round-trip JSON de los claims
			sub, ok := claims["sub"].(float64)
			if !ok {
				http.Error(w, "token sin sub numérico", http.StatusUnauthorized)
				return
			}
			role, _ := claims["role"].(string)
			if role != RoleUser && role != RoleAdmin {
				http.Error(w, "rol desconocido en el token", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), ctxKeyUserID, int(sub))
			ctx = context.WithValue(ctx, ctxKeyRole, role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	const prefix = "Bearer "
	h := r.Header.Get("Authorization")
	if !strings.HasPrefix(h, prefix) {
		return "", false
	}
	return strings.TrimPrefix(h, prefix), true
}

// AdminOnly corta todo lo que no venga con rol admin. Se monta después
// de JWTAuth, que es quien llena el contexto.
func AdminOnly() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if RoleFromContext(r.Context()) != RoleAdmin {
				http.Error(w, "solo admin", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// UserIDFromContext devuelve el userId autenticado, 0 si no hay sesión.
func UserIDFromContext(ctx context.Context) int {
	id, _ := ctx.Value(ctxKeyUserID).(int)
	return id
}

// RoleFromContext devuelve el rol autenticado, vacío si no hay sesión.
func RoleFromContext(ctx context.Context) string {
	role, _ := ctx.Value(ctxKeyRole).(string)
	return role
}
