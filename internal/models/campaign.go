package models

import (
	"errors"
	"strings"
)

// Campaign input defaults applied before any model runs.
const (
	DefaultCampaignBudget      = 1000.0
	DefaultCampaignImpressions = 10000.0
	DefaultCampaignChannel     = "google_ads"
	DefaultCampaignAudience    = "general"
)

// CampaignInput describes a campaign to forecast.
type CampaignInput struct {
	Name        string  `json:"name,omitempty"`
	Budget      float64 `json:"budget" validate:"gte=0"`
	Impressions float64 `json:"impressions" validate:"gte=0"`
	Channel     string  `json:"channel,omitempty" validate:"omitempty,max=64"`
	Audience    string  `json:"audience,omitempty" validate:"omitempty,max=128"`
	Objective   string  `json:"objective,omitempty" validate:"omitempty,max=256"`
}

// WithDefaults returns a copy with zero fields replaced by defaults.
func (c CampaignInput) WithDefaults() CampaignInput {
	if c.Budget <= 0 {
		c.Budget = DefaultCampaignBudget
	}
	if c.Impressions <= 0 {
		c.Impressions = DefaultCampaignImpressions
	}
	if strings.TrimSpace(c.Channel) == "" {
		c.Channel = DefaultCampaignChannel
	}
	if strings.TrimSpace(c.Audience) == "" {
		c.Audience = DefaultCampaignAudience
	}
	return c
}

// Validate performs basic validation.
func (c *CampaignInput) Validate() error {
	if c.Budget < 0 {
		return errors.New("budget must be non-negative")
	}
	if c.Impressions < 0 {
		return errors.New("impressions must be non-negative")
	}
	return nil
}
