package stonfi

import (
	"encoding/json"
	"fmt"

	"github.com/lbhlabs/tonswap/internal/asset"
)

// assetQueryResponse is the directory response envelope.
type assetQueryResponse struct {
	AssetList []assetPayload `json:"asset_list"`
}

// assetPayload is one directory entry. Fields the UI does not need are ignored.
type assetPayload struct {
	ContractAddress string    `json:"contract_address"`
	Kind            string    `json:"kind"`
	Meta            assetMeta `json:"meta"`
	Tags            []string  `json:"tags"`
}

type assetMeta struct {
	Symbol      string `json:"symbol"`
	DisplayName string `json:"display_name"`
	Decimals    *uint8 `json:"decimals"`
}

// toAsset validates a directory entry and converts it to the domain model.
func (p *assetPayload) toAsset() (*asset.Asset, error) {
	if p.ContractAddress == "" {
		return nil, fmt.Errorf("entry missing contract_address")
	}
	if !asset.Kind(p.Kind).Valid() {
		return nil, fmt.Errorf("entry %s has unknown kind %q", p.ContractAddress, p.Kind)
	}
	if p.Meta.Symbol == "" {
		return nil, fmt.Errorf("entry %s missing symbol", p.ContractAddress)
	}
	if p.Meta.Decimals == nil {
		return nil, fmt.Errorf("entry %s missing decimals", p.ContractAddress)
	}
	if *p.Meta.Decimals > 30 {
		return nil, fmt.Errorf("entry %s has unsupported decimals %d", p.ContractAddress, *p.Meta.Decimals)
	}

	name := p.Meta.DisplayName
	if name == "" {
		name = p.Meta.Symbol
	}

	return asset.NewWithName(p.ContractAddress, asset.Kind(p.Kind), p.Meta.Symbol, name, *p.Meta.Decimals), nil
}

// apiError is the STON API error envelope.
type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *apiError) Error() string {
	return fmt.Sprintf("ston api error %d: %s", e.Code, e.Message)
}

// stonErrorHandler parses STON API error responses.
func stonErrorHandler(statusCode int, body []byte) error {
	if statusCode >= 400 {
		var apiErr apiError
		if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Message != "" {
			return &apiErr
		}
		return fmt.Errorf("HTTP %d: %s", statusCode, string(body))
	}
	return nil
}
