// Package all links every archive backend into the binary. Blank-import it
// from main; the configured kind is selected at runtime via storage.Open.
package all

import (
	_ "supplydash/internal/storage/mssql"
	_ "supplydash/internal/storage/postgres"
	_ "supplydash/internal/storage/sqlite"
)
