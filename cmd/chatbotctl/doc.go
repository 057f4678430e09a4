// Command chatbotctl runs the permission request chatbot and manages its
// database.
//
// The bot does not speak the chat protocol itself. A bridge process relays
// every room message to the bot's webhook and posts back the replies it
// returns.
//
// # Quick Start
//
//	# Run database migrations
//	chatbotctl db migrate
//
//	# Start the server
//	CHATBOT_WEBHOOK_SECRET=... chatbotctl server
//
//	# Or try it without a database
//	chatbotctl server --store memory --seed fixtures.yml
//
// # Environment Variables
//
//   - DATABASE_URL: PostgreSQL connection string
//   - CHATBOT_CONFIG_PATH: directory holding chatbot.yml (default: /etc/chatbot)
//   - CHATBOT_WEBHOOK_SECRET: HS256 key shared with the bridge
//   - CHATBOT_LOG_LEVEL: Log level (debug, info, warn, error)
//   - AUDIT_DATABASE_URL: optional database for audit records
//   - PORT: Server port (default: 8080)
package main
