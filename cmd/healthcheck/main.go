// main.go
//
// Demand and report tracking service for the Assessoria de Comunicação
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of ascom-demandas.
// ascom-demandas is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// ascom-demandas is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with ascom-demandas.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/localnerve/ascom-demandas/internal/config"
	"github.com/localnerve/ascom-demandas/internal/database"
	"github.com/localnerve/ascom-demandas/internal/services"
	"github.com/localnerve/ascom-demandas/internal/storage"
	"github.com/localnerve/ascom-demandas/internal/utils"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close(db)

	blobs, err := storage.NewBlobStore(cfg.UploadDir)
	if err != nil {
		log.Fatalf("Failed to open upload directory: %v", err)
	}

	// Perform health check
	result := services.HealthCheck(cfg, db, blobs)

	// Probe the HTTP listener as well
	serverURL := fmt.Sprintf("http://localhost:%s", cfg.Port)
	latency, err := utils.PingService(context.Background(), serverURL, 1500*time.Millisecond)
	if err != nil {
		result.Status = "unhealthy"
		result.Details["server_error"] = err.Error()
	} else {
		result.Details["server_url"] = serverURL
		result.Details["server_latency"] = latency.String()
	}

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
	os.Exit(0)
}
