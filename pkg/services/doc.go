// Package services implements the scheduled inventory jobs:
// shelf label pushes, offline inventory exports to the NAS,
// unknown-location cleanup and the inventory difference report.
// AppService coordinates them for the HTTP handlers and the scheduler.
package services
