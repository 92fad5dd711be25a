// Package config provides configuration management for flexctl and for
// applications that enable flex attributes from a file.
//
// # Configuration Sources
//
// Configuration is loaded from, in increasing precedence:
//
//   - Built-in defaults
//   - A .env file in the working directory (optional)
//   - $FLEX_CONFIG_PATH/flex.yml, default /etc/flex/flex.yml (optional)
//   - Environment variables
//
// # Key Configuration Options
//
//   - DATABASE_URL: Database connection
//   - FLEX_LOG_LEVEL: Logging verbosity
//   - FLEX_LOG_JSON: JSON log output
//
// # Models
//
// The models section lists companion options per owner model, using the
// same keys as flex.Options:
//
//	models:
//	  Paris: {}
//	  Document:
//	    versioned: true
//	    fields: [status, author]
package config
