// Package config provides configuration management for the chatbot.
//
// Configuration is built from defaults, then a YAML file, then environment
// variables; later sources win. The origin of each attribute is tracked and
// shown by `chatbotctl configuration show`.
//
// # Configuration Sources
//
//   - Environment variables (highest precedence)
//   - $CHATBOT_CONFIG_PATH/chatbot.yml, default /etc/chatbot/chatbot.yml
//
// # Key Configuration Options
//
//   - CHATBOT_REP_REQUIREMENT_TO_JOIN_REVIEWERS: reputation needed to join Reviewer (3000)
//   - CHATBOT_REVIEWS_WINDOW_DAYS: trailing review window (30)
//   - CHATBOT_REVIEWS_REQUIRED: reviews needed within the window (3)
//   - CHATBOT_DAYS_IN_REVIEWERS_GROUP: minimum Reviewer tenure (30)
//   - CHATBOT_LOG_LEVEL: debug, info, warn or error
//   - CHATBOT_WEBHOOK_SECRET: key shared with the chat bridge
//   - AUDIT_DATABASE_URL: optional audit database
//
// A ChatbotConfig is a plain value handed to the components that need it.
// Watch reloads it when the file changes.
package config
