// Command cli is a maintenance tool for the databoard database.
//
// Usage:
//
//	cli [-d dsn] seed [-n count]   fill the database with synthetic users
//	cli [-d dsn] adduser           register a single user interactively
//
// The seeded data set is intended for exercising the paginated listing.
package main

import (
	"bufio"
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/term"

	"github.com/apetrovs/databoard/internal/server/config"
	"github.com/apetrovs/databoard/internal/server/migrations"
	"github.com/apetrovs/databoard/internal/server/users"
	"github.com/apetrovs/databoard/internal/server/validation"
)

// readPassword is a test seam for term.ReadPassword.
var readPassword = term.ReadPassword

var seedNames = []string{
	"Alice", "Bruno", "Carla", "Diego", "Elena", "Fabio", "Gabriela",
	"Henrique", "Isabela", "Joao", "Karina", "Lucas", "Mariana",
}

func main() {

	cfg := config.LoadConfig()

	command := ""
	for _, a := range os.Args[1:] {
		if !strings.HasPrefix(a, "-") {
			command = a
			break
		}
	}

	ctx := context.Background()

	repo, err := openRepository(ctx, cfg)
	if err != nil {
		log.Fatalf("%v", err)
	}

	switch command {
	case "seed":
		err = seed(ctx, repo, cfg)
	case "adduser":
		err = addUser(ctx, repo, cfg)
	default:
		err = fmt.Errorf("unknown command %q (want seed or adduser)", command)
	}

	if err != nil {
		log.Fatalf("%v", err)
	}
}

func openRepository(ctx context.Context, cfg *config.Config) (users.Repository, error) {

	if cfg.DatabaseDSN == "" {
		return nil, fmt.Errorf("a database DSN is required (-d or DATABASE_DSN)")
	}

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}

	goose.SetBaseFS(migrations.Migrations)
	if err := goose.UpContext(ctx, db, "."); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	return users.NewPostgresRepository(db)
}

// seed inserts n synthetic users with unique e-mails and a shared known
// password ("test123"), hashed once and reused.
func seed(ctx context.Context, repo users.Repository, cfg *config.Config) error {

	fs := flag.NewFlagSet("seed", flag.ContinueOnError)
	n := fs.Int("n", 50, "number of users to create")
	_ = fs.Parse(seedArgs(os.Args[1:]))

	hash, err := bcrypt.GenerateFromPassword([]byte("test123"), cfg.BcryptCost)
	if err != nil {
		return err
	}

	created := 0
	for i := 0; i < *n; i++ {
		name := fmt.Sprintf("%s %03d", seedNames[i%len(seedNames)], i)
		email := fmt.Sprintf("%s@seed.test.com", uuid.NewString()[:8])
		birth := time.Date(1950+i%50, time.Month(1+i%12), 1+i%28, 0, 0, 0, 0, time.UTC)

		_, err := repo.Create(ctx, &users.User{
			Name:         name,
			Email:        email,
			PasswordHash: string(hash),
			BirthDate:    birth,
		})
		if err != nil {
			return fmt.Errorf("seeding user %d: %w", i, err)
		}
		created++
	}

	log.Printf("seeded %d users", created)
	return nil
}

// seedArgs keeps only the flags the seed subcommand owns.
func seedArgs(args []string) []string {
	for i, a := range args {
		if a == "seed" {
			return args[i+1:]
		}
	}
	return nil
}

// addUser registers a single user from interactive input. The password
// is read without echo.
func addUser(ctx context.Context, repo users.Repository, cfg *config.Config) error {

	reader := bufio.NewReader(os.Stdin)

	name, err := prompt(reader, "Name: ")
	if err != nil {
		return err
	}
	email, err := prompt(reader, "E-mail: ")
	if err != nil {
		return err
	}
	birthDate, err := prompt(reader, "Birth date (dd/mm/yyyy): ")
	if err != nil {
		return err
	}

	fmt.Print("Password: ")
	password, err := readPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return err
	}

	if err := validation.ValidatePassword(string(password)); err != nil {
		return err
	}
	if err := validation.ValidateEmailUniqueness(ctx, email, repo.ExistsByEmail); err != nil {
		return err
	}
	if err := validation.ValidateEmailSyntax(email); err != nil {
		return err
	}
	if err := validation.ValidateBirthDate(birthDate, time.Now()); err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword(password, cfg.BcryptCost)
	if err != nil {
		return err
	}

	birth, err := validation.ParseBirthDate(birthDate)
	if err != nil {
		return err
	}

	user, err := repo.Create(ctx, &users.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		BirthDate:    birth,
	})
	if err != nil {
		return err
	}

	log.Printf("created user id=%d", user.ID)
	return nil
}

func prompt(reader *bufio.Reader, label string) (string, error) {
	fmt.Print(label)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
