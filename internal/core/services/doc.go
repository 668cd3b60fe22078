// Package services implements the driving port interfaces.
//
// UploadPipeline owns the three document slots, runs compression in the
// background and drives uploads through the transport port. SettingsService
// and HistoryService are thin layers over the config and attempt stores.
package services
