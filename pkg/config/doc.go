// Package config provides configuration management for the SuperCron service.
//
// An environment name (local, development or production) selects a
// .env.<name> file which is loaded over the process environment before
// the configuration record is built. The package supports:
//   - HTTP server settings (host, port, log level, worker count)
//   - Primary and secondary MySQL databases
//   - FTP settings for store inventory files
//   - ESL FTP and API settings for shelf label pushes
//   - NAS SFTP settings for inventory backups
//   - SMTP settings for report mail
//
// A missing environment file is the single fatal bootstrap error; every
// other value has a default or is validated during startup.
package config
