package config

import (
	"os"
	"strings"
)

type Config struct {
	ProjectID                    string
	Port                         string
	AllowedOrigins               []string
	StorageBucket                string
	SignedURLServiceAccountEmail string
	ReportLogoPath               string
	GeocodeUserAgent             string
}

func Load() Config {
	// FIREBASE_PROJECT_ID or GOOGLE_CLOUD_PROJECT
	projectID := getenv("FIREBASE_PROJECT_ID", "")
	if projectID == "" {
		projectID = getenv("GOOGLE_CLOUD_PROJECT", "")
	}

	port := getenv("PORT", "8080")
	origins := getenv("ALLOWED_ORIGINS", "http://localhost:3000")
	storageBucket := getenv("FIREBASE_STORAGE_BUCKET", "")
	if storageBucket == "" && projectID != "" {
		storageBucket = projectID + ".appspot.com"
	}
	signedURLServiceAccountEmail := getenv("SIGNED_URL_SERVICE_ACCOUNT_EMAIL", "")
	reportLogoPath := getenv("REPORT_LOGO_PATH", "assets/logo.png")
	geocodeUserAgent := getenv("GEOCODE_USER_AGENT", "GuardMonitor/1.0")

	allowed := []string{}
	for _, o := range strings.Split(origins, ",") {
		o = strings.TrimSpace(o)
		if o != "" {
			allowed = append(allowed, o)
		}
	}

	return Config{
		ProjectID:                    projectID,
		Port:                         port,
		AllowedOrigins:               allowed,
		StorageBucket:                storageBucket,
		SignedURLServiceAccountEmail: signedURLServiceAccountEmail,
		ReportLogoPath:               reportLogoPath,
		GeocodeUserAgent:             geocodeUserAgent,
	}
}

func getenv(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}
