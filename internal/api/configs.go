package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"groundcite/config/models"
	"groundcite/internal/advisory"
)

const configsPath = "/api/configs"

// ListConfigurations returns the saved configurations in backend order. A
// response without a "configurations" array is an empty list.
func (c *Client) ListConfigurations(ctx context.Context) ([]models.SavedConfiguration, error) {
	body, err := c.do(ctx, http.MethodGet, configsPath, nil)
	if err != nil {
		return nil, err
	}

	list := gjson.GetBytes(body, "configurations")
	if !list.IsArray() {
		return []models.SavedConfiguration{}, nil
	}

	configs := make([]models.SavedConfiguration, 0, len(list.Array()))
	for i, item := range list.Array() {
		var cfg models.SavedConfiguration
		if err := json.Unmarshal([]byte(item.Raw), &cfg); err != nil {
			c.logger.Warn("skipping unreadable saved configuration", zap.Int("index", i), zap.Error(err))
			continue
		}
		configs = append(configs, cfg)
	}
	return configs, nil
}

// SaveConfiguration stores req and returns the record the backend created.
// The record is nil when the backend acknowledges without echoing it.
func (c *Client) SaveConfiguration(ctx context.Context, req models.SaveRequest) (*models.SavedConfiguration, error) {
	body, err := c.do(ctx, http.MethodPost, configsPath, req)
	if err != nil {
		return nil, err
	}

	record := gjson.GetBytes(body, "configuration")
	if !record.IsObject() {
		record = gjson.ParseBytes(body)
	}
	if !record.IsObject() || !record.Get("id").Exists() {
		return nil, nil
	}

	var saved models.SavedConfiguration
	if err := json.Unmarshal([]byte(record.Raw), &saved); err != nil {
		return nil, nil
	}
	return &saved, nil
}

// DeleteConfiguration removes the configuration with the given id
func (c *Client) DeleteConfiguration(ctx context.Context, id models.ConfigID) error {
	if id == "" {
		return fmt.Errorf("configuration id cannot be empty")
	}
	_, err := c.do(ctx, http.MethodDelete, configsPath+"/"+url.PathEscape(string(id)), nil)
	return err
}

// GetConfiguration fetches one configuration by id
func (c *Client) GetConfiguration(ctx context.Context, id models.ConfigID) (*models.SavedConfiguration, error) {
	if id == "" {
		return nil, fmt.Errorf("configuration id cannot be empty")
	}

	body, err := c.do(ctx, http.MethodGet, configsPath+"/"+url.PathEscape(string(id)), nil)
	if err != nil {
		return nil, err
	}

	record := gjson.GetBytes(body, "configuration")
	if !record.IsObject() {
		return nil, advisory.New(advisory.CategoryNotFound, "Configuration not found")
	}

	var saved models.SavedConfiguration
	if err := json.Unmarshal([]byte(record.Raw), &saved); err != nil {
		return nil, advisory.Wrap(advisory.CategoryMalformed, err)
	}
	return &saved, nil
}
