package directory

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"sitedirectory/internal/domain"
)

// EncodedHubData is the hub-declared association payload as served by the
// directory: a JSON document embedded as a string inside the response body.
type EncodedHubData string

// hubSiteData is the decoded form of EncodedHubData
type hubSiteData struct {
	AssociatedSites []domain.DeclaredSite `json:"AssociatedSites"`
}

// Decode parses the embedded document into its declared sites.
// An empty payload decodes to no sites.
func (d EncodedHubData) Decode() ([]domain.DeclaredSite, error) {
	raw := strings.TrimSpace(string(d))
	if raw == "" {
		return []domain.DeclaredSite{}, nil
	}
	var data hubSiteData
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		return nil, &DecodeFailed{Op: "hub site data", Payload: "AssociatedSites", Err: err}
	}
	if data.AssociatedSites == nil {
		return []domain.DeclaredSite{}, nil
	}
	return data.AssociatedSites, nil
}

// OData responses arrive either bare (odata=nometadata) or wrapped in "d" (verbose).
// unwrapOData returns the inner document in both cases.
func unwrapOData(body []byte) (json.RawMessage, error) {
	var envelope struct {
		D json.RawMessage `json:"d"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, err
	}
	if len(envelope.D) > 0 && string(envelope.D) != "null" {
		return envelope.D, nil
	}
	return body, nil
}

type hubListPayload struct {
	Value   []HubEntry `json:"value"`
	Results []HubEntry `json:"results"`
}

func decodeHubList(body []byte) ([]HubEntry, error) {
	inner, err := unwrapOData(body)
	if err != nil {
		return nil, &DecodeFailed{Op: "list hubs", Payload: "HubSites", Err: err}
	}
	var p hubListPayload
	if err := json.Unmarshal(inner, &p); err != nil {
		return nil, &DecodeFailed{Op: "list hubs", Payload: "HubSites", Err: err}
	}
	if p.Value != nil {
		return p.Value, nil
	}
	if p.Results != nil {
		return p.Results, nil
	}
	return []HubEntry{}, nil
}

type webPayload struct {
	ID        string `json:"Id"`
	HubSiteID string `json:"HubSiteId"`
}

func decodeWebIdentity(body []byte) (domain.WebIdentity, error) {
	inner, err := unwrapOData(body)
	if err != nil {
		return domain.WebIdentity{}, &DecodeFailed{Op: "web identity", Payload: "web", Err: err}
	}
	var p webPayload
	if err := json.Unmarshal(inner, &p); err != nil {
		return domain.WebIdentity{}, &DecodeFailed{Op: "web identity", Payload: "web", Err: err}
	}
	if p.ID == "" {
		return domain.WebIdentity{}, &DecodeFailed{Op: "web identity", Payload: "web", Err: errors.New("missing Id")}
	}
	return domain.WebIdentity{SelfID: p.ID, HubPointerID: p.HubSiteID}, nil
}

type hubSiteDataPayload struct {
	Value *string `json:"value"`
}

type hubSiteDataVerbose struct {
	HubSiteData *string `json:"HubSiteData"`
}

func decodeHubSiteData(body []byte) (EncodedHubData, error) {
	inner, err := unwrapOData(body)
	if err != nil {
		return "", &DecodeFailed{Op: "hub site data", Payload: "HubSiteData", Err: err}
	}
	var p hubSiteDataPayload
	if err := json.Unmarshal(inner, &p); err != nil {
		return "", &DecodeFailed{Op: "hub site data", Payload: "HubSiteData", Err: err}
	}
	if p.Value != nil {
		return EncodedHubData(*p.Value), nil
	}
	var v hubSiteDataVerbose
	if err := json.Unmarshal(inner, &v); err != nil {
		return "", &DecodeFailed{Op: "hub site data", Payload: "HubSiteData", Err: err}
	}
	if v.HubSiteData != nil {
		return EncodedHubData(*v.HubSiteData), nil
	}
	return "", &DecodeFailed{Op: "hub site data", Payload: "HubSiteData", Err: errors.New("missing value")}
}

type searchPayload struct {
	PrimaryQueryResult *struct {
		RelevantResults *struct {
			Table *struct {
				Rows searchRows `json:"Rows"`
			} `json:"Table"`
		} `json:"RelevantResults"`
	} `json:"PrimaryQueryResult"`
	// verbose envelope uses "query" at the top level
	Query *searchPayload `json:"query"`
}

// searchRows accepts both a bare array and the verbose {"results": [...]} form
type searchRows []domain.SearchRow

func (r *searchRows) UnmarshalJSON(data []byte) error {
	var rows []searchRow
	if err := json.Unmarshal(data, &rows); err == nil {
		*r = toSearchRows(rows)
		return nil
	}
	var wrapped struct {
		Results []searchRow `json:"results"`
	}
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return fmt.Errorf("rows: %w", err)
	}
	*r = toSearchRows(wrapped.Results)
	return nil
}

type searchRow struct {
	Cells searchCells `json:"Cells"`
}

type searchCells []domain.SearchCell

func (c *searchCells) UnmarshalJSON(data []byte) error {
	var cells []searchCell
	if err := json.Unmarshal(data, &cells); err == nil {
		*c = toSearchCells(cells)
		return nil
	}
	var wrapped struct {
		Results []searchCell `json:"results"`
	}
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return fmt.Errorf("cells: %w", err)
	}
	*c = toSearchCells(wrapped.Results)
	return nil
}

// searchCell tolerates null values, which the index emits for unset properties
type searchCell struct {
	Key   string  `json:"Key"`
	Value *string `json:"Value"`
}

func toSearchCells(in []searchCell) searchCells {
	out := make(searchCells, 0, len(in))
	for _, c := range in {
		cell := domain.SearchCell{Key: c.Key}
		if c.Value != nil {
			cell.Value = *c.Value
		}
		out = append(out, cell)
	}
	return out
}

func toSearchRows(in []searchRow) searchRows {
	out := make(searchRows, 0, len(in))
	for _, r := range in {
		out = append(out, domain.SearchRow{Cells: []domain.SearchCell(r.Cells)})
	}
	return out
}

func decodeSearchRows(body []byte) ([]domain.SearchRow, error) {
	inner, err := unwrapOData(body)
	if err != nil {
		return nil, &DecodeFailed{Op: "search", Payload: "query", Err: err}
	}
	var p searchPayload
	if err := json.Unmarshal(inner, &p); err != nil {
		return nil, &DecodeFailed{Op: "search", Payload: "query", Err: err}
	}
	if p.PrimaryQueryResult == nil && p.Query != nil {
		p = *p.Query
	}
	if p.PrimaryQueryResult == nil || p.PrimaryQueryResult.RelevantResults == nil ||
		p.PrimaryQueryResult.RelevantResults.Table == nil {
		return []domain.SearchRow{}, nil
	}
	rows := p.PrimaryQueryResult.RelevantResults.Table.Rows
	if rows == nil {
		return []domain.SearchRow{}, nil
	}
	return []domain.SearchRow(rows), nil
}
