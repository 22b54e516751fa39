package database

import (
	"net/url"
	"strings"
)

// ConstructDatabaseURL combines a server URL with a database name.
// sslmode=disable is added when the URL does not choose a mode itself.
// A URL that cannot be parsed is returned unchanged so pgx reports the error.
func ConstructDatabaseURL(baseURL, databaseName string) string {
	if databaseName == "" {
		return baseURL
	}

	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return baseURL
	}

	u.Path = "/" + databaseName

	query := u.Query()
	if query.Get("sslmode") == "" {
		query.Set("sslmode", "disable")
	}
	u.RawQuery = query.Encode()

	return u.String()
}
