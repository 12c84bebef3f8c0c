// Package handlers provides HTTP request handlers for the SuperCron API.
//
// The API includes endpoints for:
//   - Health checks and service identity
//   - Manual triggers for every scheduled inventory job
//
// All handlers include proper error handling and JSON response
// formatting. Manual jobs run in the background and the trigger
// endpoints return immediately.
package handlers
