package integration

import (
	"context"
	"database/sql"
	"encoding/base64"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/exec"
	"strconv"
	"time"

	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/gorm"

	"github.com/doodlesbykumbi/iam-admin/pkg/config"
	"github.com/doodlesbykumbi/iam-admin/pkg/db"
	"github.com/doodlesbykumbi/iam-admin/pkg/secretbox"
	"github.com/doodlesbykumbi/iam-admin/pkg/server"
	"github.com/doodlesbykumbi/iam-admin/pkg/server/endpoints"
	"github.com/doodlesbykumbi/iam-admin/pkg/server/middleware"
)

const signingKey = "integration-signing-key-0123456789abcdef"

// TestContext holds all the resources needed for integration tests
type TestContext struct {
	DB            *gorm.DB
	RawDB         *sql.DB
	Container     testcontainers.Container
	ServerURL     string
	DatabaseURL   string
	DataKey       []byte
	Cipher        secretbox.Cipher
	Tokens        *middleware.JWTAuthenticator
	HTTPClient    *http.Client
	Cancel        context.CancelFunc
	ServerProcess *exec.Cmd
	InlineServer  *server.Server
}

// NewTestContext creates a new test context with PostgreSQL testcontainer.
// Modes:
//   - Inline mode (default): the server runs in-process
//   - Binary mode: Set IAM_BINARY to the path of the iamctl binary
func NewTestContext(ctx context.Context) (*TestContext, error) {
	binaryPath := os.Getenv("IAM_BINARY")
	if binaryPath != "" {
		if _, err := os.Stat(binaryPath); err != nil {
			return nil, fmt.Errorf("IAM_BINARY path does not exist: %s", binaryPath)
		}
		log.Printf("Using binary: %s", binaryPath)
	} else {
		log.Println("Using inline server mode")
	}

	pgContainer, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("iam_test"),
		tcpostgres.WithUsername("iam"),
		tcpostgres.WithPassword("iam"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to start postgres container: %w", err)
	}

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		_ = pgContainer.Terminate(ctx)
		return nil, fmt.Errorf("failed to get connection string: %w", err)
	}

	if err := migrateUp(connStr); err != nil {
		_ = pgContainer.Terminate(ctx)
		return nil, err
	}

	dataKey, err := secretbox.GenerateKey()
	if err != nil {
		_ = pgContainer.Terminate(ctx)
		return nil, err
	}
	box, err := secretbox.New(dataKey)
	if err != nil {
		_ = pgContainer.Terminate(ctx)
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	database, err := db.Connect(db.Config{URL: connStr, Cipher: box})
	if err != nil {
		_ = pgContainer.Terminate(ctx)
		return nil, err
	}
	rawDB, err := database.DB()
	if err != nil {
		_ = pgContainer.Terminate(ctx)
		return nil, fmt.Errorf("failed to get raw db: %w", err)
	}

	cfg, err := config.Load()
	if err != nil {
		_ = pgContainer.Terminate(ctx)
		return nil, err
	}
	tokens, err := middleware.NewJWTAuthenticator([]byte(signingKey), cfg.TokenIssuer)
	if err != nil {
		_ = pgContainer.Terminate(ctx)
		return nil, err
	}

	port, err := freePort()
	if err != nil {
		_ = pgContainer.Terminate(ctx)
		return nil, err
	}
	serverURL := fmt.Sprintf("http://127.0.0.1:%d", port)

	tc := &TestContext{
		DB:          database,
		RawDB:       rawDB,
		Container:   pgContainer,
		ServerURL:   serverURL,
		DatabaseURL: connStr,
		DataKey:     dataKey,
		Cipher:      box,
		Tokens:      tokens,
		HTTPClient:  &http.Client{Timeout: 10 * time.Second},
	}

	if binaryPath == "" {
		cfg.ListenAddress = "127.0.0.1"
		cfg.Port = port
		tc.InlineServer, tc.Cancel = startInlineServer(cfg, database, tokens)
	} else {
		tc.ServerProcess, tc.Cancel, err = startBinary(binaryPath, connStr, dataKey, port)
		if err != nil {
			tc.Close(ctx)
			return nil, fmt.Errorf("failed to start server binary: %w", err)
		}
	}

	if err := waitForServer(serverURL, 30*time.Second); err != nil {
		tc.Close(ctx)
		return nil, fmt.Errorf("server failed to become ready: %w", err)
	}
	return tc, nil
}

func migrateUp(dbURL string) error {
	m, err := db.NewMigrate(dbURL, "")
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	defer func() { _, _ = m.Close() }()
	_, err = db.Up(m)
	return err
}

func freePort() (int, error) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return 0, err
	}
	defer func() { _ = l.Close() }()
	return l.Addr().(*net.TCPAddr).Port, nil
}

// startInlineServer starts the server in-process (no binary needed)
func startInlineServer(cfg *config.IAMConfig, database *gorm.DB, tokens *middleware.JWTAuthenticator) (*server.Server, context.CancelFunc) {
	s := server.NewServer(cfg, database, tokens)
	endpoints.RegisterAll(s)

	go func() {
		if err := s.Start(); err != nil {
			log.Printf("Inline server stopped: %v", err)
		}
	}()

	return s, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.Shutdown(ctx)
	}
}

// startBinary starts the iamctl server binary
func startBinary(binaryPath, dbURL string, dataKey []byte, port int) (*exec.Cmd, context.CancelFunc, error) {
	ctx, cancel := context.WithCancel(context.Background())

	// Migrations already ran during setup.
	cmd := exec.CommandContext(ctx, binaryPath, "server", "--no-migrate")
	cmd.Env = append(os.Environ(),
		"DATABASE_URL="+dbURL,
		"IAM_DATA_KEY="+base64.StdEncoding.EncodeToString(dataKey),
		"IAM_TOKEN_SIGNING_KEY="+signingKey,
		"IAM_LISTEN_ADDRESS=127.0.0.1",
		"IAM_PORT="+strconv.Itoa(port),
	)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Start(); err != nil {
		cancel()
		return nil, nil, fmt.Errorf("failed to start binary: %w", err)
	}

	return cmd, cancel, nil
}

// waitForServer polls the health endpoint until it responds or times out
func waitForServer(serverURL string, timeout time.Duration) error {
	client := &http.Client{Timeout: 2 * time.Second}
	deadline := time.Now().Add(timeout)

	for time.Now().Before(deadline) {
		resp, err := client.Get(serverURL + "/healthz")
		if err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return nil
			}
		}
		time.Sleep(100 * time.Millisecond)
	}

	return fmt.Errorf("server did not become ready within %v", timeout)
}

// Reset removes every row the scenarios create.
func (tc *TestContext) Reset() error {
	_, err := tc.RawDB.Exec(`TRUNCATE orgs, smtp_configs, audit_messages CASCADE`)
	return err
}

// Close cleans up all test resources
func (tc *TestContext) Close(ctx context.Context) {
	if tc.Cancel != nil {
		tc.Cancel()
	}
	if tc.ServerProcess != nil && tc.ServerProcess.Process != nil {
		_ = tc.ServerProcess.Process.Kill()
		_ = tc.ServerProcess.Wait()
	}
	if tc.RawDB != nil {
		_ = tc.RawDB.Close()
	}
	if tc.Container != nil {
		_ = tc.Container.Terminate(ctx)
	}
}
