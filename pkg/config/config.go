package config

import (
	"encoding/json"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/socvr/chatbot-go/pkg/eligibility"
)

const (
	DefaultConfigPath = "/etc/chatbot"
	ConfigFileName    = "chatbot.yml"
)

// ValidLogLevels is the list of accepted log levels
var ValidLogLevels = []string{"debug", "info", "warn", "error"}

// ChatbotConfig holds all chatbot configuration settings
type ChatbotConfig struct {
	// RepRequirementToJoinReviewers is the reputation a user needs before a
	// request to join the Reviewer group can be approved
	RepRequirementToJoinReviewers int `yaml:"rep_requirement_to_join_reviewers" json:"rep_requirement_to_join_reviewers"`

	// ReviewsWindowDays is the trailing window in which reviews are counted
	ReviewsWindowDays int `yaml:"reviews_window_days" json:"reviews_window_days"`

	// ReviewsRequired is the number of reviews an actor must have logged
	// within the window to process Reviewer requests
	ReviewsRequired int `yaml:"reviews_required" json:"reviews_required"`

	// DaysInReviewersGroup is the minimum Reviewer tenure of an actor
	DaysInReviewersGroup int `yaml:"days_in_reviewers_group" json:"days_in_reviewers_group"`

	LogLevel string `yaml:"log_level" json:"log_level"`

	// TrustedProxies is a list of CIDR ranges whose forwarding headers are honored
	TrustedProxies []string `yaml:"trusted_proxies" json:"trusted_proxies"`

	AuditEnabled     bool   `yaml:"audit_enabled" json:"audit_enabled"`
	AuditDatabaseURL string `yaml:"-" json:"-"`

	// WebhookSecret is the HS256 key shared with the chat bridge
	WebhookSecret string `yaml:"-" json:"-"`

	// sources tracks where each value came from
	sources map[string]string

	// configFilePath is the path to the config file
	configFilePath string
}

// fileConfig is the YAML document. Pointers tell unset from zero.
type fileConfig struct {
	RepRequirementToJoinReviewers *int     `yaml:"rep_requirement_to_join_reviewers"`
	ReviewsWindowDays             *int     `yaml:"reviews_window_days"`
	ReviewsRequired               *int     `yaml:"reviews_required"`
	DaysInReviewersGroup          *int     `yaml:"days_in_reviewers_group"`
	LogLevel                      *string  `yaml:"log_level"`
	TrustedProxies                []string `yaml:"trusted_proxies"`
	AuditEnabled                  *bool    `yaml:"audit_enabled"`
}

// Attribute represents a configuration attribute with its value and source
type Attribute struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Source string `json:"source"`
}

// newDefault returns a config with default values
func newDefault() *ChatbotConfig {
	return &ChatbotConfig{
		RepRequirementToJoinReviewers: 3000,
		ReviewsWindowDays:             30,
		ReviewsRequired:               3,
		DaysInReviewersGroup:          30,
		LogLevel:                      "info",
		TrustedProxies:                []string{},
		AuditEnabled:                  true,
		sources:                       make(map[string]string),
	}
}

// Load loads configuration from file and environment variables
// Environment variables take precedence over file values
func Load() (*ChatbotConfig, error) {
	configPath := os.Getenv("CHATBOT_CONFIG_PATH")
	if configPath == "" {
		configPath = DefaultConfigPath
	}
	return LoadFile(filepath.Join(configPath, ConfigFileName))
}

// LoadFile loads configuration from path, which may not exist, and the
// environment
func LoadFile(path string) (*ChatbotConfig, error) {
	config := newDefault()
	config.configFilePath = path

	for _, name := range attributeNames() {
		config.sources[name] = "default"
	}

	if data, err := os.ReadFile(path); err == nil {
		var file fileConfig
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
		config.applyFileConfig(&file)
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	if err := config.applyEnvConfig(); err != nil {
		return nil, err
	}

	return config, nil
}

func attributeNames() []string {
	return []string{
		"rep_requirement_to_join_reviewers", "reviews_window_days",
		"reviews_required", "days_in_reviewers_group", "log_level",
		"trusted_proxies", "audit_enabled", "audit_database_url",
		"webhook_secret",
	}
}

func (c *ChatbotConfig) applyFileConfig(file *fileConfig) {
	setInt := func(name string, dst *int, src *int) {
		if src != nil {
			*dst = *src
			c.sources[name] = "file"
		}
	}
	setInt("rep_requirement_to_join_reviewers", &c.RepRequirementToJoinReviewers, file.RepRequirementToJoinReviewers)
	setInt("reviews_window_days", &c.ReviewsWindowDays, file.ReviewsWindowDays)
	setInt("reviews_required", &c.ReviewsRequired, file.ReviewsRequired)
	setInt("days_in_reviewers_group", &c.DaysInReviewersGroup, file.DaysInReviewersGroup)

	if file.LogLevel != nil {
		c.LogLevel = *file.LogLevel
		c.sources["log_level"] = "file"
	}
	if len(file.TrustedProxies) > 0 {
		c.TrustedProxies = file.TrustedProxies
		c.sources["trusted_proxies"] = "file"
	}
	if file.AuditEnabled != nil {
		c.AuditEnabled = *file.AuditEnabled
		c.sources["audit_enabled"] = "file"
	}
}

func (c *ChatbotConfig) applyEnvConfig() error {
	ints := []struct {
		env  string
		name string
		dst  *int
	}{
		{"CHATBOT_REP_REQUIREMENT_TO_JOIN_REVIEWERS", "rep_requirement_to_join_reviewers", &c.RepRequirementToJoinReviewers},
		{"CHATBOT_REVIEWS_WINDOW_DAYS", "reviews_window_days", &c.ReviewsWindowDays},
		{"CHATBOT_REVIEWS_REQUIRED", "reviews_required", &c.ReviewsRequired},
		{"CHATBOT_DAYS_IN_REVIEWERS_GROUP", "days_in_reviewers_group", &c.DaysInReviewersGroup},
	}
	for _, v := range ints {
		val := os.Getenv(v.env)
		if val == "" {
			continue
		}
		i, err := strconv.Atoi(val)
		if err != nil {
			return fmt.Errorf("invalid %s value %q: %w", v.env, val, err)
		}
		*v.dst = i
		c.sources[v.name] = "environment"
	}

	if val := os.Getenv("CHATBOT_LOG_LEVEL"); val != "" {
		c.LogLevel = strings.ToLower(val)
		c.sources["log_level"] = "environment"
	}
	if val := os.Getenv("CHATBOT_TRUSTED_PROXIES"); val != "" {
		c.TrustedProxies = splitAndTrim(val)
		c.sources["trusted_proxies"] = "environment"
	}
	if val := os.Getenv("CHATBOT_AUDIT_ENABLED"); val != "" {
		c.AuditEnabled = val != "false" && val != "0" && val != "no"
		c.sources["audit_enabled"] = "environment"
	}
	if val := os.Getenv("AUDIT_DATABASE_URL"); val != "" {
		c.AuditDatabaseURL = val
		c.sources["audit_database_url"] = "environment"
	}
	if val := os.Getenv("CHATBOT_WEBHOOK_SECRET"); val != "" {
		c.WebhookSecret = val
		c.sources["webhook_secret"] = "environment"
	}
	return nil
}

// ConfigFilePath returns the path to the config file
func (c *ChatbotConfig) ConfigFilePath() string {
	return c.configFilePath
}

// Source returns the source of a configuration attribute
func (c *ChatbotConfig) Source(name string) string {
	if c.sources == nil {
		return "default"
	}
	if s, ok := c.sources[name]; ok {
		return s
	}
	return "default"
}

// Thresholds returns the eligibility thresholds
func (c *ChatbotConfig) Thresholds() eligibility.Thresholds {
	return eligibility.Thresholds{
		ReputationToJoinReviewers: c.RepRequirementToJoinReviewers,
		ReviewWindowDays:          c.ReviewsWindowDays,
		ReviewsRequired:           c.ReviewsRequired,
		MinReviewerTenureDays:     c.DaysInReviewersGroup,
	}
}

// IsTrustedProxy checks if an IP is from a trusted proxy
func (c *ChatbotConfig) IsTrustedProxy(ip string) bool {
	if len(c.TrustedProxies) == 0 {
		return false
	}

	parsedIP := net.ParseIP(ip)
	if parsedIP == nil {
		return false
	}

	for _, cidr := range c.TrustedProxies {
		_, network, err := net.ParseCIDR(cidr)
		if err != nil {
			// Try as plain IP
			if net.ParseIP(cidr) != nil && cidr == ip {
				return true
			}
			continue
		}
		if network.Contains(parsedIP) {
			return true
		}
	}
	return false
}

// Validate validates the configuration
func (c *ChatbotConfig) Validate() error {
	nonNegative := []struct {
		name  string
		value int
	}{
		{"rep_requirement_to_join_reviewers", c.RepRequirementToJoinReviewers},
		{"reviews_required", c.ReviewsRequired},
		{"days_in_reviewers_group", c.DaysInReviewersGroup},
	}
	for _, v := range nonNegative {
		if v.value < 0 {
			return fmt.Errorf("%s must not be negative, got %d", v.name, v.value)
		}
	}
	if c.ReviewsWindowDays <= 0 {
		return fmt.Errorf("reviews_window_days must be positive, got %d", c.ReviewsWindowDays)
	}

	validLevel := false
	for _, l := range ValidLogLevels {
		if c.LogLevel == l {
			validLevel = true
		}
	}
	if !validLevel {
		return fmt.Errorf("invalid log_level: %s", c.LogLevel)
	}

	for _, cidr := range c.TrustedProxies {
		if _, _, err := net.ParseCIDR(cidr); err != nil {
			if net.ParseIP(cidr) == nil {
				return fmt.Errorf("invalid trusted_proxies value: %s", cidr)
			}
		}
	}

	return nil
}

// Attributes returns all configuration attributes with their values and sources
func (c *ChatbotConfig) Attributes() []Attribute {
	return []Attribute{
		{Name: "rep_requirement_to_join_reviewers", Value: strconv.Itoa(c.RepRequirementToJoinReviewers), Source: c.Source("rep_requirement_to_join_reviewers")},
		{Name: "reviews_window_days", Value: strconv.Itoa(c.ReviewsWindowDays), Source: c.Source("reviews_window_days")},
		{Name: "reviews_required", Value: strconv.Itoa(c.ReviewsRequired), Source: c.Source("reviews_required")},
		{Name: "days_in_reviewers_group", Value: strconv.Itoa(c.DaysInReviewersGroup), Source: c.Source("days_in_reviewers_group")},
		{Name: "log_level", Value: c.LogLevel, Source: c.Source("log_level")},
		{Name: "trusted_proxies", Value: strings.Join(c.TrustedProxies, ","), Source: c.Source("trusted_proxies")},
		{Name: "audit_enabled", Value: strconv.FormatBool(c.AuditEnabled), Source: c.Source("audit_enabled")},
		{Name: "audit_database_url", Value: redact(c.AuditDatabaseURL), Source: c.Source("audit_database_url")},
		{Name: "webhook_secret", Value: redact(c.WebhookSecret), Source: c.Source("webhook_secret")},
	}
}

// FormatText returns a text representation of the configuration
func (c *ChatbotConfig) FormatText() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Config file: %s\n\n", c.configFilePath))
	sb.WriteString(fmt.Sprintf("%-40s %-30s %s\n", "NAME", "VALUE", "SOURCE"))
	sb.WriteString(fmt.Sprintf("%-40s %-30s %s\n", "----", "-----", "------"))

	for _, attr := range c.Attributes() {
		value := attr.Value
		if value == "" {
			value = "(not set)"
		}
		sb.WriteString(fmt.Sprintf("%-40s %-30s %s\n", attr.Name, value, attr.Source))
	}
	return sb.String()
}

// FormatJSON returns a JSON representation of the configuration
func (c *ChatbotConfig) FormatJSON() (string, error) {
	result := map[string]interface{}{
		"config_file": c.configFilePath,
		"attributes":  c.Attributes(),
	}
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func redact(s string) string {
	if s == "" {
		return ""
	}
	return "(redacted)"
}

func splitAndTrim(s string) []string {
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}
