package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// DefaultAssetsPath is the asset view of the wiki's file plugin.
const DefaultAssetsPath = "/files/asset/"

// GetAsset returns the descriptor for an image asset. A 404 or an empty body
// yields nil, nil.
func (c *Client) GetAsset(ctx context.Context, id int) (*Asset, error) {
	params := url.Values{}
	params.Set("asset_id", strconv.Itoa(id))
	params.Set("return_type", "json")

	path := c.assetsPath + "?" + params.Encode()
	body, err := c.Get(ctx, path)
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}

	if len(strings.TrimSpace(string(body))) == 0 {
		return nil, nil
	}

	var asset Asset
	if err := json.Unmarshal(body, &asset); err != nil {
		return nil, fmt.Errorf("%w: asset %d: %v", ErrInvalidResponse, id, err)
	}
	if asset.URL == "" {
		return nil, nil
	}
	if asset.ID == 0 {
		asset.ID = id
	}

	return &asset, nil
}
