package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/smartplanhq/api/internal/company"
	"github.com/smartplanhq/api/internal/db"
	"github.com/smartplanhq/api/internal/profile"
	"github.com/smartplanhq/api/internal/provision"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	_ = godotenv.Load()

	ctx := context.Background()

	dsn := strings.TrimSpace(os.Getenv("DB_DSN"))
	if dsn == "" {
		dsn = strings.TrimSpace(os.Getenv("DATABASE_URL"))
	}
	if dsn == "" {
		log.Fatal().Msg("defina DB_DSN ou DATABASE_URL")
	}

	pool, err := db.NewPool(ctx, dsn)
	if err != nil {
		log.Fatal().Err(err).Msg("não foi possível conectar ao banco")
	}
	defer pool.Close()

	companies := company.NewRepository(pool)
	profiles := profile.NewRepository(pool)
	provisioner := provision.NewService(profiles, log.Logger)

	cmd := os.Args[1]
	args := os.Args[2:]

	switch cmd {
	case "create":
		if err := runCreate(ctx, companies, provisioner, args); err != nil {
			log.Fatal().Err(err).Msg("falha ao criar empresa")
		}
	case "list":
		if err := runList(ctx, companies); err != nil {
			log.Fatal().Err(err).Msg("falha ao listar empresas")
		}
	default:
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "empresa CLI")
	fmt.Fprintln(os.Stderr, "uso:")
	fmt.Fprintln(os.Stderr, "  empresa create --name \"Acme Ltda\" --admin-email admin@acme.com --admin-nome \"Admin\" --admin-senha segredo123 [--document 00.000.000/0001-00]")
	fmt.Fprintln(os.Stderr, "  empresa list")
}

func runCreate(ctx context.Context, companies *company.Repository, provisioner *provision.Service, args []string) error {
	fs := flag.NewFlagSet("create", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var (
		name       = fs.String("name", "", "nome da empresa")
		document   = fs.String("document", "", "CNPJ da empresa (opcional)")
		adminEmail = fs.String("admin-email", "", "e-mail do primeiro administrador")
		adminNome  = fs.String("admin-nome", "", "nome do primeiro administrador")
		adminSenha = fs.String("admin-senha", "", "senha do primeiro administrador")
	)

	if err := fs.Parse(args); err != nil {
		return err
	}

	if strings.TrimSpace(*name) == "" {
		return fmt.Errorf("--name é obrigatório")
	}
	if strings.TrimSpace(*adminEmail) == "" || strings.TrimSpace(*adminNome) == "" || *adminSenha == "" {
		return fmt.Errorf("--admin-email, --admin-nome e --admin-senha são obrigatórios")
	}

	input := company.CreateCompanyInput{Name: strings.TrimSpace(*name)}
	if strings.TrimSpace(*document) != "" {
		doc := strings.TrimSpace(*document)
		input.Document = &doc
	}

	c, err := companies.Create(ctx, input)
	if err != nil {
		return fmt.Errorf("empresa: %w", err)
	}

	admin, err := provisioner.CreateUser(ctx, provision.Input{
		Email:     *adminEmail,
		Nome:      *adminNome,
		Senha:     *adminSenha,
		Role:      profile.RoleAdmin,
		CompanyID: c.ID,
	})
	if err != nil {
		return fmt.Errorf("administrador: %w", err)
	}

	log.Info().
		Str("empresa_id", c.ID.String()).
		Str("admin_id", admin.ID.String()).
		Msg("empresa criada com administrador inicial")

	return nil
}

func runList(ctx context.Context, companies *company.Repository) error {
	all, err := companies.List(ctx)
	if err != nil {
		return err
	}

	if len(all) == 0 {
		fmt.Println("nenhuma empresa cadastrada")
		return nil
	}

	for _, c := range all {
		doc := "-"
		if c.Document != nil {
			doc = *c.Document
		}
		fmt.Printf("%s  %-30s  %s\n", c.ID, c.Name, doc)
	}
	return nil
}
