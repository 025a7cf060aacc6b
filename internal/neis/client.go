package neis

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/tidwall/gjson"
)

// Row is a provider record passed through verbatim. NEIS field names
// (SCHUL_NM, DDISH_NM, ...) are part of the public contract, so rows stay
// dynamic instead of being remapped onto local structs.
type Row = map[string]interface{}

// Client wraps the NEIS open-data API for school directory and meal-menu
// lookups. Safe for concurrent use. A single best-effort GET per call, no
// retries.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

// NewClient builds a NEIS client. The "sample" key is the provider's
// unauthenticated placeholder and is not sent on the wire.
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		apiKey:     apiKey,
	}
}

// SearchSchools looks up school directory rows by (partial) school name.
// A provider-side "no data" answer is an empty slice, not an error.
func (c *Client) SearchSchools(name string) ([]Row, error) {
	body, err := c.get("schoolInfo", map[string]string{
		"SCHUL_NM": name,
	})
	if err != nil {
		return nil, err
	}
	return extractRows(body, "schoolInfo"), nil
}

// FetchMeals returns meal-menu rows for a school on a single date or a
// from/to range, whichever the caller supplies.
func (c *Client) FetchMeals(officeCode, schoolCode, date, startDate, endDate string) ([]Row, error) {
	params := map[string]string{
		"ATPT_OFCDC_SC_CODE": officeCode,
		"SD_SCHUL_CODE":      schoolCode,
	}
	if date != "" {
		params["MLSV_YMD"] = date
	}
	if startDate != "" {
		params["MLSV_FROM_YMD"] = startDate
	}
	if endDate != "" {
		params["MLSV_TO_YMD"] = endDate
	}

	body, err := c.get("mealServiceDietInfo", params)
	if err != nil {
		return nil, err
	}
	return extractRows(body, "mealServiceDietInfo"), nil
}

// get performs the request with pagination and format defaults merged under
// the caller's params; caller values win on collision.
func (c *Client) get(endpoint string, params map[string]string) ([]byte, error) {
	query := url.Values{}
	query.Set("Type", "json")
	query.Set("pIndex", "1")
	query.Set("pSize", "100")
	if c.apiKey != "" && c.apiKey != "sample" {
		query.Set("KEY", c.apiKey)
	}
	for k, v := range params {
		query.Set(k, v)
	}

	resp, err := c.httpClient.Get(c.baseURL + "/" + endpoint + "?" + query.Encode())
	if err != nil {
		return nil, fmt.Errorf("failed to reach NEIS API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("NEIS API returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read NEIS response: %w", err)
	}
	return body, nil
}

// extractRows pulls the row list out of the NEIS envelope. The envelope is a
// positional array — element 0 carries head/RESULT metadata, element 1 the
// rows — so extraction goes through gjson rather than a fixed struct. Any
// shape mismatch (including the RESULT-only "no data" answer) yields an
// empty slice.
func extractRows(body []byte, endpoint string) []Row {
	result := gjson.GetBytes(body, endpoint+".1.row")
	if !result.Exists() || !result.IsArray() {
		return []Row{}
	}

	rows := make([]Row, 0, len(result.Array()))
	for _, item := range result.Array() {
		if row, ok := item.Value().(map[string]interface{}); ok {
			rows = append(rows, row)
		}
	}
	return rows
}
