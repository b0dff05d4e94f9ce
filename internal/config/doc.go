// Package config loads the configuration of the licensekey tools.
//
// # Configuration Sources
//
// Configuration is layered, later sources overriding earlier ones:
//
//	1. Built-in defaults (Default)
//	2. YAML configuration file
//	3. Environment variables
//
// The configuration file is taken from the explicit path given to Load, then
// from LICENSEKEY_CONFIG, then from licensekey.yaml or configs/licensekey.yaml
// in the working directory. A missing file is not an error.
//
// # Environment Variables
//
// Variables use the LICENSEKEY_ prefix followed by section and field:
//
//	LICENSEKEY_LOGGING_LEVEL=debug
//	LICENSEKEY_KEYRING_GENERATOR_FILE=/etc/licensekey/generator.yaml
//	LICENSEKEY_KEYRING_CODEC=grouped
//	LICENSEKEY_BATCH_WORKERS=8
//	LICENSEKEY_VERIFY_RATE_LIMIT=5
//	LICENSEKEY_TELEMETRY_METRICS_TEXTFILE=/var/lib/node_exporter/licensekey.prom
package config
