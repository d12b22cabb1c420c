package models

import (
	"time"
)

// Roles válidos del sistema
const (
	RolPaciente = "paciente"
	RolDentista = "dentista"
	RolAdmin    = "admin"
	RolStaff    = "staff"
)

// RolesValidos permite validar el rol recibido en una petición
var RolesValidos = map[string]bool{
	RolPaciente: true,
	RolDentista: true,
	RolAdmin:    true,
	RolStaff:    true,
}

// Usuario representa la tabla usuarios en la base de datos
type Usuario struct {
	ID              int        `json:"id_usuario" db:"id_usuario"`
	Username        string     `json:"username" db:"username" validate:"required,max=50"`
	Email           string     `json:"email" db:"email" validate:"required,email"`
	Password        string     `json:"password,omitempty" db:"password"`
	Nombre          string     `json:"nombre" db:"nombre" validate:"required,max=100"`
	Apellido        string     `json:"apellido" db:"apellido" validate:"required,max=100"`
	Telefono        *string    `json:"telefono,omitempty" db:"telefono"`
	FechaNacimiento *string    `json:"fecha_nacimiento,omitempty" db:"fecha_nacimiento"`
	Rol             string     `json:"rol" db:"rol" validate:"oneof=paciente dentista admin staff"`
	Alergias        *string    `json:"alergias,omitempty" db:"alergias"`
	NotasMedicas    *string    `json:"notas_medicas,omitempty" db:"notas_medicas"`
	DeletedAt       *time.Time `json:"-" db:"deleted_at"`
	CreatedAt       time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at" db:"updated_at"`
}

// UsuarioResponse representa la respuesta sin datos sensibles
type UsuarioResponse struct {
	ID        int       `json:"id_usuario"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Nombre    string    `json:"nombre"`
	Apellido  string    `json:"apellido"`
	Telefono  *string   `json:"telefono,omitempty"`
	Rol       string    `json:"rol"`
	CreatedAt time.Time `json:"created_at"`
}

// LoginRequest representa la solicitud de login
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse representa la respuesta del login
type LoginResponse struct {
	Token     string          `json:"token"`
	ExpiresIn int             `json:"expires_in"` // segundos
	Usuario   UsuarioResponse `json:"usuario"`
}

// TokenResponse es la respuesta de la emisión de token para clientes API
type TokenResponse struct {
	Token     string `json:"token"`
	TokenType string `json:"token_type"`
	ExpiresIn int    `json:"expires_in"`
}

// VerificarTokenRequest representa la solicitud de verificación de token
type VerificarTokenRequest struct {
	Token string `json:"token" validate:"required"`
}

// VerificarTokenResponse expone las claims de un token válido
type VerificarTokenResponse struct {
	Valido    bool      `json:"valido"`
	UserID    int       `json:"user_id,omitempty"`
	Rol       string    `json:"rol,omitempty"`
	ExpiraEn  time.Time `json:"expira_en,omitempty"`
	EmitidoEn time.Time `json:"emitido_en,omitempty"`
}
