// Command operator-token prints a bearer token for the operator endpoints,
// signed with JWT_SECRET.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/alimikegami/point-of-sales/storefront-service/config"
	"github.com/alimikegami/point-of-sales/storefront-service/pkg/utils"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	operatorID := flag.String("id", "", "operator id")
	operatorName := flag.String("name", "", "operator display name")
	flag.Parse()

	config := config.CreateNewConfig()
	if config.JWTSecret == "" {
		log.Fatal().Msg("JWT_SECRET is not set")
	}
	if *operatorID == "" {
		log.Fatal().Msg("-id is required")
	}

	token, err := utils.CreateJWTToken(*operatorID, *operatorName, config.JWTSecret)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to sign token")
	}

	fmt.Println(token)
}
