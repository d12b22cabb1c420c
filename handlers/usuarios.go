package handlers

import (
	"context"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/lizet96/dental-backend/database"
	"github.com/lizet96/dental-backend/middleware"
	"github.com/lizet96/dental-backend/models"
	"golang.org/x/crypto/bcrypt"
)

// RegistrarUsuario crea un nuevo usuario en el sistema
func RegistrarUsuario(c *fiber.Ctx) error {
	var usuario models.Usuario
	if err := c.BodyParser(&usuario); err != nil {
		return c.Status(400).JSON(fiber.Map{
			"error": "Datos inválidos",
		})
	}

	if usuario.Rol == "" {
		usuario.Rol = models.RolPaciente
	}
	if !models.RolesValidos[usuario.Rol] {
		return c.Status(400).JSON(fiber.Map{
			"error": "Rol de usuario inválido",
		})
	}

	// Validar campos requeridos
	if usuario.Username == "" || usuario.Email == "" || usuario.Password == "" ||
		usuario.Nombre == "" || usuario.Apellido == "" {
		return c.Status(400).JSON(fiber.Map{
			"error": "Username, email, contraseña, nombre y apellido son requeridos",
		})
	}

	// Verificar que username y email no existan
	var existe int
	err := database.GetDB().QueryRow(context.Background(),
		"SELECT COUNT(*) FROM usuarios WHERE username = $1 OR email = $2",
		usuario.Username, usuario.Email).Scan(&existe)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{
			"error": "Error interno del servidor",
		})
	}
	if existe > 0 {
		return c.Status(409).JSON(fiber.Map{
			"error": "El username o el email ya están registrados",
		})
	}

	// Encriptar la contraseña
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(usuario.Password), bcrypt.DefaultCost)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{
			"error": "Error al procesar la contraseña",
		})
	}

	var nuevoID int
	err = database.GetDB().QueryRow(context.Background(),
		`INSERT INTO usuarios (username, email, password, nombre, apellido, telefono,
		                       fecha_nacimiento, rol, alergias, notas_medicas)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10) RETURNING id_usuario`,
		usuario.Username, usuario.Email, string(hashedPassword), usuario.Nombre,
		usuario.Apellido, usuario.Telefono, usuario.FechaNacimiento, usuario.Rol,
		usuario.Alergias, usuario.NotasMedicas).Scan(&nuevoID)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{
			"error": "Error al crear el usuario",
		})
	}

	respuesta := models.UsuarioResponse{
		ID:        nuevoID,
		Username:  usuario.Username,
		Email:     usuario.Email,
		Nombre:    usuario.Nombre,
		Apellido:  usuario.Apellido,
		Telefono:  usuario.Telefono,
		Rol:       usuario.Rol,
		CreatedAt: time.Now(),
	}

	return c.Status(201).JSON(fiber.Map{
		"mensaje": "Usuario creado exitosamente",
		"usuario": respuesta,
	})
}

// autenticar busca el usuario activo por username y compara la contraseña.
// Devuelve (usuario, true) solo si las credenciales son correctas.
func autenticar(username, password string) (models.Usuario, bool) {
	var usuario models.Usuario
	err := database.GetDB().QueryRow(context.Background(),
		`SELECT id_usuario, username, email, password, nombre, apellido, telefono, rol, created_at
		 FROM usuarios WHERE username = $1 AND deleted_at IS NULL`,
		username).Scan(&usuario.ID, &usuario.Username, &usuario.Email, &usuario.Password,
		&usuario.Nombre, &usuario.Apellido, &usuario.Telefono, &usuario.Rol, &usuario.CreatedAt)
	if err != nil {
		return usuario, false
	}

	if bcrypt.CompareHashAndPassword([]byte(usuario.Password), []byte(password)) != nil {
		return usuario, false
	}
	return usuario, true
}

// Login autentica un usuario y devuelve un token JWT con su perfil
func Login(c *fiber.Ctx) error {
	var loginReq models.LoginRequest
	if err := c.BodyParser(&loginReq); err != nil {
		return c.Status(400).JSON(fiber.Map{
			"error": "Datos inválidos",
		})
	}

	usuario, ok := autenticar(loginReq.Username, loginReq.Password)
	if !ok {
		// Sin token: misma respuesta para usuario inexistente y contraseña errónea
		return c.Status(401).JSON(fiber.Map{
			"error": "Credenciales inválidas",
		})
	}

	token, err := middleware.GenerateJWT(usuario.ID, usuario.Rol)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{
			"error": "Error al generar token",
		})
	}

	return c.JSON(models.LoginResponse{
		Token:     token,
		ExpiresIn: int(middleware.DuracionToken.Seconds()),
		Usuario: models.UsuarioResponse{
			ID:        usuario.ID,
			Username:  usuario.Username,
			Email:     usuario.Email,
			Nombre:    usuario.Nombre,
			Apellido:  usuario.Apellido,
			Telefono:  usuario.Telefono,
			Rol:       usuario.Rol,
			CreatedAt: usuario.CreatedAt,
		},
	})
}

// EmitirToken emite un token JWT para clientes API (sin perfil en la respuesta)
func EmitirToken(c *fiber.Ctx) error {
	var loginReq models.LoginRequest
	if err := c.BodyParser(&loginReq); err != nil {
		return c.Status(400).JSON(fiber.Map{
			"error": "Datos inválidos",
		})
	}

	usuario, ok := autenticar(loginReq.Username, loginReq.Password)
	if !ok {
		return c.Status(401).JSON(fiber.Map{
			"error": "Credenciales inválidas",
		})
	}

	token, err := middleware.GenerateJWT(usuario.ID, usuario.Rol)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{
			"error": "Error al generar token",
		})
	}

	return c.JSON(models.TokenResponse{
		Token:     token,
		TokenType: "Bearer",
		ExpiresIn: int(middleware.DuracionToken.Seconds()),
	})
}

// VerificarToken valida firma y expiración de un token y expone sus claims
func VerificarToken(c *fiber.Ctx) error {
	var req models.VerificarTokenRequest
	if err := c.BodyParser(&req); err != nil || req.Token == "" {
		return c.Status(400).JSON(fiber.Map{
			"error": "Token requerido",
		})
	}

	claims, err := middleware.ValidarJWT(req.Token)
	if err != nil {
		return c.Status(401).JSON(models.VerificarTokenResponse{Valido: false})
	}

	return c.JSON(models.VerificarTokenResponse{
		Valido:    true,
		UserID:    claims.UserID,
		Rol:       claims.Rol,
		ExpiraEn:  claims.ExpiresAt.Time,
		EmitidoEn: claims.IssuedAt.Time,
	})
}

// ObtenerPerfil obtiene el perfil del usuario autenticado
func ObtenerPerfil(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(int)

	var usuario models.UsuarioResponse
	err := database.GetDB().QueryRow(context.Background(),
		`SELECT id_usuario, username, email, nombre, apellido, telefono, rol, created_at
		 FROM usuarios WHERE id_usuario = $1 AND deleted_at IS NULL`, userID).Scan(
		&usuario.ID, &usuario.Username, &usuario.Email, &usuario.Nombre,
		&usuario.Apellido, &usuario.Telefono, &usuario.Rol, &usuario.CreatedAt)
	if err != nil {
		return c.Status(404).JSON(fiber.Map{
			"error": "Usuario no encontrado",
		})
	}

	return c.JSON(usuario)
}

// ObtenerUsuarios obtiene todos los usuarios activos (staff y admin)
func ObtenerUsuarios(c *fiber.Ctx) error {
	rows, err := database.GetDB().Query(context.Background(),
		`SELECT id_usuario, username, email, nombre, apellido, telefono, rol, created_at
		 FROM usuarios WHERE deleted_at IS NULL ORDER BY created_at DESC`)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{
			"error": "Error al obtener usuarios",
		})
	}
	defer rows.Close()

	var usuarios []models.UsuarioResponse
	for rows.Next() {
		var usuario models.UsuarioResponse
		err := rows.Scan(&usuario.ID, &usuario.Username, &usuario.Email, &usuario.Nombre,
			&usuario.Apellido, &usuario.Telefono, &usuario.Rol, &usuario.CreatedAt)
		if err != nil {
			continue
		}
		usuarios = append(usuarios, usuario)
	}

	return c.JSON(fiber.Map{
		"usuarios": usuarios,
		"total":    len(usuarios),
	})
}

// ObtenerUsuarioPorID obtiene un usuario específico
func ObtenerUsuarioPorID(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{
			"error": "ID inválido",
		})
	}

	// Admin y staff pueden ver cualquier usuario, los demás solo su perfil
	userID := c.Locals("user_id").(int)
	rol := c.Locals("user_rol").(string)
	if rol != models.RolAdmin && rol != models.RolStaff && userID != id {
		return c.Status(403).JSON(fiber.Map{
			"error": "No tienes permisos para ver este usuario",
		})
	}

	var usuario models.UsuarioResponse
	err = database.GetDB().QueryRow(context.Background(),
		`SELECT id_usuario, username, email, nombre, apellido, telefono, rol, created_at
		 FROM usuarios WHERE id_usuario = $1 AND deleted_at IS NULL`, id).Scan(
		&usuario.ID, &usuario.Username, &usuario.Email, &usuario.Nombre,
		&usuario.Apellido, &usuario.Telefono, &usuario.Rol, &usuario.CreatedAt)
	if err != nil {
		return c.Status(404).JSON(fiber.Map{
			"error": "Usuario no encontrado",
		})
	}

	return c.JSON(usuario)
}

// ActualizarUsuario actualiza los datos de contacto y médicos de un usuario
func ActualizarUsuario(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{
			"error": "ID inválido",
		})
	}

	userID := c.Locals("user_id").(int)
	rol := c.Locals("user_rol").(string)
	if rol != models.RolAdmin && rol != models.RolStaff && userID != id {
		return c.Status(403).JSON(fiber.Map{
			"error": "No tienes permisos para actualizar este usuario",
		})
	}

	var usuario models.Usuario
	if err := c.BodyParser(&usuario); err != nil {
		return c.Status(400).JSON(fiber.Map{
			"error": "Datos inválidos",
		})
	}
	if usuario.Nombre == "" || usuario.Email == "" {
		return c.Status(400).JSON(fiber.Map{
			"error": "Nombre y email son requeridos",
		})
	}

	tag, err := database.GetDB().Exec(context.Background(),
		`UPDATE usuarios
		 SET nombre = $1, apellido = COALESCE(NULLIF($2, ''), apellido), email = $3,
		     telefono = COALESCE($4, telefono), alergias = COALESCE($5, alergias),
		     notas_medicas = COALESCE($6, notas_medicas), updated_at = NOW()
		 WHERE id_usuario = $7 AND deleted_at IS NULL`,
		usuario.Nombre, usuario.Apellido, usuario.Email, usuario.Telefono,
		usuario.Alergias, usuario.NotasMedicas, id)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{
			"error": "Error al actualizar usuario",
		})
	}
	if tag.RowsAffected() == 0 {
		return c.Status(404).JSON(fiber.Map{
			"error": "Usuario no encontrado",
		})
	}

	return c.JSON(fiber.Map{
		"mensaje": "Usuario actualizado exitosamente",
	})
}

// EliminarUsuario realiza un borrado lógico (solo admin). Ningún usuario se
// elimina físicamente de la tabla.
func EliminarUsuario(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{
			"error": "ID inválido",
		})
	}

	tag, err := database.GetDB().Exec(context.Background(),
		"UPDATE usuarios SET deleted_at = NOW(), updated_at = NOW() WHERE id_usuario = $1 AND deleted_at IS NULL", id)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{
			"error": "Error al eliminar usuario",
		})
	}
	if tag.RowsAffected() == 0 {
		return c.Status(404).JSON(fiber.Map{
			"error": "Usuario no encontrado",
		})
	}

	return c.JSON(fiber.Map{
		"mensaje": "Usuario eliminado exitosamente",
	})
}
