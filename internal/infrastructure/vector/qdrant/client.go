package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hazref/hazsearch/internal/core/domain"
)

// Client talks to a qdrant collection holding one point per substance.
// Point payloads carry a denormalized copy of the catalog record, so
// semantic hits remain usable when the relational store is degraded.
type Client struct {
	baseURL    string
	collection string
	httpClient *http.Client

	ensureMu          sync.Mutex
	ensuredCollection bool
	ensuredVectorSize int
}

func New(baseURL, collection string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		collection: collection,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

func (c *Client) UpsertSubstance(ctx context.Context, record domain.SubstanceRecord, vector []float32) error {
	if len(vector) == 0 {
		return fmt.Errorf("empty vector for un %d", record.UNNumber)
	}
	if err := c.ensureCollection(ctx, len(vector)); err != nil {
		return err
	}

	point := map[string]any{
		// Deterministic ID keeps re-indexing idempotent.
		"id":     uuid.NewSHA1(uuid.NameSpaceOID, []byte(fmt.Sprintf("substance-%d", record.UNNumber))).String(),
		"vector": vector,
		"payload": map[string]any{
			"un_number":           record.UNNumber,
			"name":                record.Name,
			"name_en":             record.NameEN,
			"hazard_class":        record.HazardClass,
			"secondary_hazard":    record.SecondaryHazard,
			"packing_group":       record.PackingGroup,
			"special_provisions":  record.SpecialProvisions,
			"limited_quantity":    record.LimitedQuantity,
			"excepted_quantity":   record.ExceptedQuantity,
			"packing_instruction": record.PackingInstruction,
			"text":                record.SearchText(),
		},
	}

	body, err := json.Marshal(map[string]any{"points": []any{point}})
	if err != nil {
		return fmt.Errorf("marshal upsert body: %w", err)
	}

	url := fmt.Sprintf("%s/collections/%s/points?wait=true", c.baseURL, c.collection)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create upsert request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("qdrant upsert request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("qdrant upsert status: %s", resp.Status)
	}
	return nil
}

func (c *Client) Search(ctx context.Context, queryVector []float32, k int) ([]domain.SemanticHit, error) {
	reqBody := map[string]any{
		"vector":       queryVector,
		"limit":        k,
		"with_payload": true,
	}
	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal search body: %w", err)
	}

	url := fmt.Sprintf("%s/collections/%s/points/search", c.baseURL, c.collection)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create search request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("qdrant search request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("qdrant search status: %s", resp.Status)
	}

	var searchResp struct {
		Result []struct {
			Score   float64        `json:"score"`
			Payload map[string]any `json:"payload"`
		} `json:"result"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&searchResp); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	out := make([]domain.SemanticHit, 0, len(searchResp.Result))
	for _, r := range searchResp.Result {
		record := recordFromPayload(r.Payload)
		if record.UNNumber <= 0 {
			continue
		}
		out = append(out, domain.SemanticHit{Record: record, Score: r.Score})
	}
	return out, nil
}

// Available probes the collections endpoint with a short deadline.
func (c *Client) Available(ctx context.Context) bool {
	probeCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(probeCtx, http.MethodGet, c.baseURL+"/collections", nil)
	if err != nil {
		return false
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
	return resp.StatusCode < 300
}

func (c *Client) Count(ctx context.Context) (int, error) {
	url := fmt.Sprintf("%s/collections/%s", c.baseURL, c.collection)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, fmt.Errorf("create collection info request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("qdrant collection info request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return 0, fmt.Errorf("qdrant collection info status: %s", resp.Status)
	}

	var infoResp struct {
		Result struct {
			PointsCount int `json:"points_count"`
		} `json:"result"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&infoResp); err != nil {
		return 0, fmt.Errorf("decode collection info: %w", err)
	}
	return infoResp.Result.PointsCount, nil
}

func (c *Client) ensureCollection(ctx context.Context, vectorSize int) error {
	c.ensureMu.Lock()
	if c.ensuredCollection && c.ensuredVectorSize == vectorSize {
		c.ensureMu.Unlock()
		return nil
	}
	c.ensureMu.Unlock()

	reqBody := map[string]any{
		"vectors": map[string]any{
			"size":     vectorSize,
			"distance": "Cosine",
		},
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("marshal create collection body: %w", err)
	}

	url := fmt.Sprintf("%s/collections/%s", c.baseURL, c.collection)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create collection request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("qdrant ensure collection request: %w", err)
	}
	defer resp.Body.Close()

	// 200/201 for create, 409 if already exists (depends on version/config).
	if resp.StatusCode == http.StatusConflict {
		c.markCollectionEnsured(vectorSize)
		return nil
	}
	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		if msg := strings.TrimSpace(string(body)); msg != "" {
			return fmt.Errorf("qdrant ensure collection status: %s: %s", resp.Status, msg)
		}
		return fmt.Errorf("qdrant ensure collection status: %s", resp.Status)
	}
	c.markCollectionEnsured(vectorSize)
	return nil
}

func (c *Client) markCollectionEnsured(vectorSize int) {
	c.ensureMu.Lock()
	defer c.ensureMu.Unlock()
	c.ensuredCollection = true
	c.ensuredVectorSize = vectorSize
}

func recordFromPayload(payload map[string]any) domain.SubstanceRecord {
	return domain.SubstanceRecord{
		UNNumber:           getIntPayload(payload, "un_number"),
		Name:               getStringPayload(payload, "name"),
		NameEN:             getStringPayload(payload, "name_en"),
		HazardClass:        getStringPayload(payload, "hazard_class"),
		SecondaryHazard:    getStringPayload(payload, "secondary_hazard"),
		PackingGroup:       getStringPayload(payload, "packing_group"),
		SpecialProvisions:  getStringPayload(payload, "special_provisions"),
		LimitedQuantity:    getStringPayload(payload, "limited_quantity"),
		ExceptedQuantity:   getStringPayload(payload, "excepted_quantity"),
		PackingInstruction: getStringPayload(payload, "packing_instruction"),
	}
}

func getStringPayload(payload map[string]any, key string) string {
	v, ok := payload[key]
	if !ok {
		return ""
	}
	s, ok := v.(string)
	if ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

func getIntPayload(payload map[string]any, key string) int {
	switch v := payload[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	case json.Number:
		n, _ := v.Int64()
		return int(n)
	default:
		return 0
	}
}
