package dto

// MetaEditDTO 编辑他人时需附带管理员密钥
type MetaEditDTO struct {
	Title    *string `json:"title" validate:"omitempty,max=20"`
	Role     *string `json:"role"`
	AdminKey string  `json:"admin_key"`
}

type SwitchDTO struct {
	Value bool `json:"value"`
}

type AdminKeyDTO struct {
	AdminKey string `json:"admin_key" binding:"required"`
}
