package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/saturnino-fabrica-de-software/chamada/internal/auth"
)

// tokenEnv holds only the signing settings, so the command runs without a database.
type tokenEnv struct {
	JWTSecret string        `envconfig:"JWT_SECRET" required:"true"`
	JWTIssuer string        `envconfig:"JWT_ISSUER" default:"chamada-api"`
	JWTTTL    time.Duration `envconfig:"JWT_TTL" default:"24h"`
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	teacher := flag.String("teacher", "", "Teacher UUID (default: a new random id)")
	name := flag.String("name", "", "Teacher display name")
	flag.Parse()

	_ = godotenv.Load()

	var env tokenEnv
	if err := envconfig.Process("", &env); err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	teacherID := uuid.New()
	if *teacher != "" {
		id, err := uuid.Parse(*teacher)
		if err != nil {
			return fmt.Errorf("invalid -teacher: %w", err)
		}
		teacherID = id
	}

	token, err := auth.NewJWTService(env.JWTSecret, env.JWTIssuer, env.JWTTTL).GenerateToken(teacherID, *name)
	if err != nil {
		return err
	}

	fmt.Printf("TEACHER_ID=%s\nTOKEN=%s\n", teacherID, token)
	return nil
}
