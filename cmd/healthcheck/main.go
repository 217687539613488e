// main.go
//
// Operations portal for tabletop mech campaigns
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of ops-portal.
// ops-portal is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// ops-portal is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with ops-portal.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/localnerve/ops-portal/internal/config"
	"github.com/localnerve/ops-portal/internal/services"
	"github.com/localnerve/ops-portal/internal/store"
)

func main() {
	var serverURL string
	flag.StringVar(&serverURL, "url", "", "server health URL, defaults to http://localhost:$PORT/healthz")
	var storeOnly bool
	flag.BoolVar(&storeOnly, "store-only", false, "skip the server probe")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if serverURL == "" && !storeOnly {
		serverURL = fmt.Sprintf("http://localhost:%s/healthz", cfg.Port)
	}
	if storeOnly {
		serverURL = ""
	}

	// Open the store
	st, err := store.Open(cfg)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)

	// Perform health check
	result := services.HealthCheck(ctx, cfg, st, serverURL)
	cancel()
	st.Close()

	// Output result as JSON
	output, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		log.Fatalf("Failed to marshal health check result: %v", err)
	}

	fmt.Println(string(output))

	// Exit with appropriate code
	if !result.Healthy() {
		os.Exit(1)
	}
}
