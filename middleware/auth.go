package middleware

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// DuracionToken es la vigencia de los tokens emitidos
const DuracionToken = 24 * time.Hour

// Clave secreta para firmar los tokens JWT; se toma del entorno
func claveJWT() []byte {
	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		return []byte(secret)
	}
	return []byte("clave_secreta_solo_para_desarrollo")
}

// Claims personalizados para el JWT: sujeto (usuario) y alcance (rol)
type Claims struct {
	UserID int    `json:"user_id"`
	Rol    string `json:"rol"`
	jwt.RegisteredClaims
}

// GenerateJWT genera un token JWT para un usuario con la vigencia estándar
func GenerateJWT(userID int, rol string) (string, error) {
	return GenerateJWTConDuracion(userID, rol, DuracionToken)
}

// GenerateJWTConDuracion permite controlar la vigencia (y en pruebas, emitir
// tokens ya expirados)
func GenerateJWTConDuracion(userID int, rol string, duracion time.Duration) (string, error) {
	ahora := time.Now()
	claims := Claims{
		UserID: userID,
		Rol:    rol,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.Itoa(userID),
			ExpiresAt: jwt.NewNumericDate(ahora.Add(duracion)),
			IssuedAt:  jwt.NewNumericDate(ahora),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(claveJWT())
}

// ValidarJWT verifica firma y expiración y devuelve las claims
func ValidarJWT(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		// Rechazar algoritmos distintos de HMAC
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return claveJWT(), nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}

// JWTMiddleware middleware para validar tokens JWT
func JWTMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		// Obtener el token del header Authorization
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(401).JSON(fiber.Map{
				"error": "Token de autorización requerido",
			})
		}

		// Verificar que el token tenga el formato "Bearer <token>"
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			return c.Status(401).JSON(fiber.Map{
				"error": "Formato de token inválido",
			})
		}

		claims, err := ValidarJWT(tokenString)
		if err != nil {
			return c.Status(401).JSON(fiber.Map{
				"error": "Token inválido o expirado",
			})
		}

		// Guardar información del usuario en el contexto
		c.Locals("user_id", claims.UserID)
		c.Locals("user_rol", claims.Rol)

		return c.Next()
	}
}

// RequireRol middleware para requerir uno de los roles indicados
func RequireRol(rolesPermitidos ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		rol, ok := c.Locals("user_rol").(string)
		if !ok {
			return c.Status(403).JSON(fiber.Map{
				"error": "Rol de usuario no encontrado",
			})
		}

		for _, permitido := range rolesPermitidos {
			if rol == permitido {
				return c.Next()
			}
		}

		return c.Status(403).JSON(fiber.Map{
			"error": "Acceso denegado: permisos insuficientes",
		})
	}
}
