package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Sync intent states.
const (
	SyncPendente = "PENDENTE"
	SyncEnviado  = "ENVIADO"
	SyncFalhou   = "FALHOU"
)

// PdvSyncPayload is the serialized form stored in the intent: only the lines
// that carry an external product code are forwardable.
type PdvSyncPayload struct {
	PedidoID string        `json:"pedidoId"`
	Itens    []PdvSyncItem `json:"itens"`
}

type PdvSyncItem struct {
	CodigoProduto string `json:"codigoProduto"`
	Quantidade    int    `json:"quantidade"`
}

// PdvSyncIntent is the outbox row for forwarding a pedido to the external
// PDV (Omie). It is written in the same transaction as the pedido, so a lost
// enqueue or a crashed worker never loses the sync — the retry cron picks up
// any PENDENTE intent whose NextRetryAt is due. After MaxSyncTentativas
// failures the intent is marked FALHOU and parked in the DLQ; the pedido
// itself is never rolled back because of sync trouble.
type PdvSyncIntent struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	PedidoID       uuid.UUID       `gorm:"type:uuid;index;not null" json:"pedidoId"`
	RestaurantCnpj string          `gorm:"type:varchar(14);not null;index" json:"restaurantCnpj"`
	Payload        json.RawMessage `gorm:"type:jsonb;not null" json:"payload"`
	Status         string          `gorm:"type:varchar(20);not null;default:'PENDENTE';index" json:"status"`
	Tentativas     int             `gorm:"not null;default:0" json:"tentativas"`
	NextRetryAt    *time.Time      `json:"nextRetryAt,omitempty"`
	LastError      *string         `json:"lastError,omitempty"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}
