package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
)

// GetArticle returns an article with the content of its current revision.
func (c *Client) GetArticle(ctx context.Context, articleID string) (*Article, error) {
	path := fmt.Sprintf("/api/articles/%s/", url.PathEscape(articleID))
	body, err := c.Get(ctx, path)
	if err != nil {
		return nil, err
	}

	var article Article
	if err := json.Unmarshal(body, &article); err != nil {
		return nil, fmt.Errorf("failed to parse article response: %w", err)
	}

	if article.Content == "" && article.Revision != nil {
		article.Content = article.Revision.Content
	}
	if article.Title == "" && article.Revision != nil {
		article.Title = article.Revision.Title
	}

	return &article, nil
}

// GetArticleChildren returns the descendants of an article up to depth levels.
func (c *Client) GetArticleChildren(ctx context.Context, articleID string, depth int) ([]ArticleNode, error) {
	params := url.Values{}
	if depth > 0 {
		params.Set("depth", strconv.Itoa(depth))
	}

	path := fmt.Sprintf("/api/articles/%s/children/", url.PathEscape(articleID))
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	body, err := c.Get(ctx, path)
	if err != nil {
		return nil, err
	}

	var result struct {
		Results []ArticleNode `json:"results"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to parse article children response: %w", err)
	}

	return result.Results, nil
}

// Ping checks that the article API is reachable with the configured token.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.Get(ctx, "/api/articles/?limit=1")
	return err
}
