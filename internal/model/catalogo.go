package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Catalog entities. The order/caixa core only reads these — their CRUD lives
// with the administrative surface, outside this service's write path.

// Restaurante is the tenant root. Every core row references it by CNPJ.
// PdvIntegration selects the external PDV/ERP target ("OMIE" or empty).
type Restaurante struct {
	Cnpj           string    `gorm:"type:varchar(14);primaryKey" json:"cnpj"`
	Nome           string    `gorm:"type:varchar(255);not null" json:"nome"`
	PdvIntegration string    `gorm:"type:varchar(20);not null;default:''" json:"pdvIntegration"`
	OmieKey        *string   `gorm:"type:varchar(255)" json:"-"`
	OmieSecret     *string   `gorm:"type:varchar(255)" json:"-"`
	CreatedAt      time.Time `json:"createdAt"`
}

// Usuario holds the minimum the core needs to attribute pedidos and caixas.
type Usuario struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Nome           string    `gorm:"type:varchar(255);not null" json:"nome"`
	RestaurantCnpj string    `gorm:"type:varchar(14);not null;index" json:"restaurantCnpj"`
}

type Produto struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Nome           string          `gorm:"type:varchar(255);not null" json:"nome"`
	Descricao      *string         `gorm:"type:varchar(1000)" json:"descricao,omitempty"`
	Preco          decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"preco"`
	Codigo         *string         `gorm:"type:varchar(255)" json:"codigo,omitempty"`
	ExternoID      *string         `gorm:"type:varchar(255)" json:"externoId,omitempty"`
	Imagem         *string         `gorm:"type:varchar(500)" json:"imagem,omitempty"`
	Ativo          bool            `gorm:"not null;default:true" json:"ativo"`
	RestaurantCnpj string          `gorm:"type:varchar(14);not null;index" json:"restaurantCnpj"`
}

type Adicional struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Nome           string          `gorm:"type:varchar(255);not null" json:"nome"`
	Preco          decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"preco"`
	CodIntegra     *string         `gorm:"type:varchar(255)" json:"codIntegra,omitempty"`
	RestaurantCnpj string          `gorm:"type:varchar(14);not null;index" json:"restaurantCnpj"`
}

// MetodoPagamento — Type distinguishes cash from card/pix for the front end;
// the reconciliation report echoes it per method.
type MetodoPagamento struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Name           string    `gorm:"type:varchar(100);not null" json:"name"`
	Type           string    `gorm:"type:varchar(30);not null" json:"type"`
	Description    *string   `gorm:"type:varchar(255)" json:"description,omitempty"`
	Deleted        bool      `gorm:"not null;default:false" json:"-"`
	RestaurantCnpj string    `gorm:"type:varchar(14);not null;index" json:"restaurantCnpj"`
}

type Mesa struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Numero         int       `gorm:"not null" json:"numero"`
	RestaurantCnpj string    `gorm:"type:varchar(14);not null;index" json:"restaurantCnpj"`
}

// Comanda is a running-tab ticket, the table-less alternative to a mesa.
type Comanda struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Numero         int       `gorm:"not null" json:"numero"`
	RestaurantCnpj string    `gorm:"type:varchar(14);not null;index" json:"restaurantCnpj"`
}
