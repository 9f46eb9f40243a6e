package infra

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// ── Omie PDV client ───────────────────────────────────────────────────────────
// Omie exposes a JSON-RPC-style API: every request is a POST to a resource URL
// with a {call, app_key, app_secret, param} envelope. Credentials are
// per-tenant, so they travel with each call instead of living on the client.

// OmieCredentials are the per-restaurant API credentials.
type OmieCredentials struct {
	AppKey    string
	AppSecret string
}

// OmiePedidoItem is one line of the order sent to Omie.
type OmiePedidoItem struct {
	CodigoProduto string `json:"codigo_produto"`
	Quantidade    int    `json:"quantidade"`
}

// OmiePedido is the AdicionarPedido param. CodigoPedidoIntegracao carries our
// pedido id so a replayed request is deduplicated on the Omie side.
type OmiePedido struct {
	CodigoPedidoIntegracao string           `json:"codigo_pedido_integracao"`
	QuantidadeItens        int              `json:"quantidade_itens"`
	Itens                  []OmiePedidoItem `json:"det"`
}

// OmiePedidoResponse is the AdicionarPedido result.
type OmiePedidoResponse struct {
	CodigoPedido    int64  `json:"codigo_pedido"`
	NumeroPedido    string `json:"numero_pedido"`
	CodigoStatus    string `json:"codigo_status"`
	DescricaoStatus string `json:"descricao_status"`
}

type omieEnvelope struct {
	Call      string        `json:"call"`
	AppKey    string        `json:"app_key"`
	AppSecret string        `json:"app_secret"`
	Param     []interface{} `json:"param"`
}

type omieFault struct {
	Faultstring string `json:"faultstring"`
	Faultcode   string `json:"faultcode"`
}

// OmieClient talks to the Omie REST API.
type OmieClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewOmieClient(baseURL string) *OmieClient {
	return &OmieClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// AdicionarPedido pushes a sales order to Omie and returns its assigned code.
func (c *OmieClient) AdicionarPedido(ctx context.Context, creds OmieCredentials, pedido OmiePedido) (*OmiePedidoResponse, error) {
	envelope := omieEnvelope{
		Call:      "AdicionarPedido",
		AppKey:    creds.AppKey,
		AppSecret: creds.AppSecret,
		Param:     []interface{}{pedido},
	}
	body, err := json.Marshal(envelope)
	if err != nil {
		return nil, fmt.Errorf("omie: marshal envelope: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/produtos/pedidovenda/", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("omie: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("omie: unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var fault omieFault
		if err := json.NewDecoder(resp.Body).Decode(&fault); err == nil && fault.Faultstring != "" {
			return nil, fmt.Errorf("omie: %s (%s)", fault.Faultstring, fault.Faultcode)
		}
		return nil, fmt.Errorf("omie: returned %d", resp.StatusCode)
	}

	var result OmiePedidoResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("omie: decode response: %w", err)
	}
	return &result, nil
}
