package domain

// User — пользователь так, как его отдает бэкенд (админка и /usuarios/me).
type User struct {
	ID      int64    `json:"id"`
	Nome    string   `json:"nome"`
	Email   string   `json:"email"`
	Celular string   `json:"celular,omitempty"`
	Roles   []string `json:"roles,omitempty"`
}

// RoleList приводит строковые роли бэкенда к типу Role
func (u User) RoleList() []Role {
	out := make([]Role, 0, len(u.Roles))
	for _, r := range u.Roles {
		out = append(out, Role(r))
	}
	return out
}

// HasRole нужен шаблонам админки для отметки чекбоксов.
func (u User) HasRole(role Role) bool {
	for _, r := range u.Roles {
		if Role(r) == role {
			return true
		}
	}
	return false
}

// ProfileUpdate — тело PUT /usuarios/me
type ProfileUpdate struct {
	Nome    string `json:"nome"`
	Celular string `json:"celular"`
}

// PasswordChange — тело POST /usuarios/me/mudar-senha
type PasswordChange struct {
	SenhaAtual string `json:"senhaAtual"`
	SenhaNova  string `json:"senhaNova"`
}

// RolesUpdate — тело PUT /admin/usuarios/{id}/roles
type RolesUpdate struct {
	NomesDasRoles []string `json:"nomesDasRoles"`
}
