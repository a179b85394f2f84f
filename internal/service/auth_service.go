package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/smartplanhq/api/internal/auth"
	"github.com/smartplanhq/api/internal/profile"
)

var (
	// ErrInvalidCredentials indica falha na autenticação.
	ErrInvalidCredentials = errors.New("credenciais inválidas")
	// ErrAccountDisabled indica conta desativada.
	ErrAccountDisabled = errors.New("conta desativada")
	// ErrRefreshInvalid indica refresh token inválido ou expirado.
	ErrRefreshInvalid = errors.New("refresh token inválido")
	// ErrPasskeyNotFound indica credencial biométrica desconhecida.
	ErrPasskeyNotFound = errors.New("credencial não encontrada")
)

type accountRepository interface {
	GetAccountByEmail(ctx context.Context, email string) (*profile.Account, error)
	GetAccountByID(ctx context.Context, id uuid.UUID) (*profile.Account, error)
	GetByID(ctx context.Context, id uuid.UUID) (*profile.Profile, error)
	GetByEmail(ctx context.Context, email string) (*profile.Profile, error)
	UpdatePassword(ctx context.Context, id uuid.UUID, hash string) error
}

type redisCommander interface {
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// AuthService concentra regras de autenticação e sessões.
type AuthService struct {
	repo       accountRepository
	redis      redisCommander
	jwt        *auth.JWTManager
	refreshTTL time.Duration
	pool       *pgxpool.Pool
}

// NewAuthService cria novo serviço.
func NewAuthService(repo *profile.Repository, pool *pgxpool.Pool, redisClient *redis.Client, jwtMgr *auth.JWTManager, refreshTTL time.Duration) *AuthService {
	return &AuthService{repo: repo, pool: pool, redis: redisClient, jwt: jwtMgr, refreshTTL: refreshTTL}
}

// JWT expõe gerenciador de JWT (útil em middlewares).
func (s *AuthService) JWT() *auth.JWTManager {
	return s.jwt
}

// LoginResult representa retorno padrão de autenticações.
type LoginResult struct {
	AccessToken   string
	RefreshToken  string
	RefreshExpiry time.Time
	Profile       *profile.Profile
}

// Login autentica por e-mail e senha.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	account, err := s.repo.GetAccountByEmail(ctx, strings.ToLower(email))
	if err != nil {
		if errors.Is(err, profile.ErrAccountNotFound) {
			log.Warn().Msg("login: conta não encontrada")
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	ok, err := auth.Verify(password, account.SenhaHash)
	if err != nil {
		log.Warn().Err(err).Msg("login: falha ao verificar senha")
		return nil, ErrInvalidCredentials
	}
	if !ok {
		log.Warn().Msg("login: senha inválida")
		return nil, ErrInvalidCredentials
	}

	return s.loginFromAccount(ctx, account)
}

// LoginWithAccount emite sessão para conta já autenticada (passkey).
func (s *AuthService) LoginWithAccount(ctx context.Context, account *profile.Account) (*LoginResult, error) {
	return s.loginFromAccount(ctx, account)
}

func (s *AuthService) loginFromAccount(ctx context.Context, account *profile.Account) (*LoginResult, error) {
	if !account.Ativo {
		return nil, ErrAccountDisabled
	}

	p, err := s.repo.GetByID(ctx, account.ID)
	if err != nil {
		return nil, err
	}

	return s.issueSession(ctx, p)
}

func (s *AuthService) issueSession(ctx context.Context, p *profile.Profile) (*LoginResult, error) {
	companyID := ""
	if p.CompanyID != nil {
		companyID = p.CompanyID.String()
	}

	token, _, err := s.jwt.GenerateAccessToken(p.ID.String(), p.Role, companyID)
	if err != nil {
		return nil, err
	}

	rawRefresh, refreshHash, err := auth.GenerateRefreshToken()
	if err != nil {
		return nil, err
	}

	expires := time.Now().UTC().Add(s.refreshTTL)
	if err := s.redis.Set(ctx, auth.RefreshRedisKey(refreshHash), p.ID.String(), s.refreshTTL).Err(); err != nil {
		return nil, err
	}

	return &LoginResult{
		AccessToken:   token,
		RefreshToken:  rawRefresh,
		RefreshExpiry: expires,
		Profile:       p,
	}, nil
}

// Refresh rotaciona o refresh token: o antigo é consumido e um novo é emitido.
func (s *AuthService) Refresh(ctx context.Context, rawToken string) (*LoginResult, error) {
	if rawToken == "" {
		return nil, ErrRefreshInvalid
	}

	hash := auth.HashRefreshToken(rawToken)
	key := auth.RefreshRedisKey(hash)

	subjectStr, err := s.redis.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrRefreshInvalid
		}
		return nil, err
	}

	subject, err := uuid.Parse(subjectStr)
	if err != nil {
		return nil, ErrRefreshInvalid
	}

	if err := s.redis.Del(ctx, key).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return nil, err
	}

	p, err := s.repo.GetByID(ctx, subject)
	if err != nil {
		if errors.Is(err, profile.ErrNotFound) {
			return nil, ErrRefreshInvalid
		}
		return nil, err
	}

	return s.issueSession(ctx, p)
}

// Logout revoga o refresh token atual.
func (s *AuthService) Logout(ctx context.Context, rawToken string) error {
	if rawToken == "" {
		return nil
	}
	hash := auth.HashRefreshToken(rawToken)
	if err := s.redis.Del(ctx, auth.RefreshRedisKey(hash)).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return err
	}
	return nil
}

// Me devolve o perfil do subject autenticado.
func (s *AuthService) Me(ctx context.Context, subject uuid.UUID) (*profile.Profile, error) {
	return s.repo.GetByID(ctx, subject)
}

// ChangePassword troca a senha após conferir a atual.
func (s *AuthService) ChangePassword(ctx context.Context, subject uuid.UUID, current, next string) error {
	account, err := s.repo.GetAccountByID(ctx, subject)
	if err != nil {
		return err
	}

	ok, err := auth.Verify(current, account.SenhaHash)
	if err != nil || !ok {
		return ErrInvalidCredentials
	}

	hash, err := auth.Hash(next)
	if err != nil {
		return err
	}

	return s.repo.UpdatePassword(ctx, subject, hash)
}

// GetAccountByEmail expõe a conta para o fluxo de passkey.
func (s *AuthService) GetAccountByEmail(ctx context.Context, email string) (*profile.Account, error) {
	return s.repo.GetAccountByEmail(ctx, strings.ToLower(email))
}

// GetAccountByID expõe a conta pelo identificador.
func (s *AuthService) GetAccountByID(ctx context.Context, id uuid.UUID) (*profile.Account, error) {
	return s.repo.GetAccountByID(ctx, id)
}

// PasskeyCredential é uma credencial WebAuthn persistida.
type PasskeyCredential struct {
	ID           uuid.UUID
	ProfileID    uuid.UUID
	CredentialID []byte
	PublicKey    []byte
	SignCount    uint32
	Transports   []string
	AAGUID       []byte
	Nickname     *string
	Cloned       bool
	CreatedAt    time.Time
	UpdatedAt    *time.Time
}

const passkeyColumns = `id, profile_id, credential_id, public_key, sign_count, transports, aaguid, nickname, cloned, created_at, updated_at`

// ListPasskeys lista credenciais do perfil, mais recentes primeiro.
func (s *AuthService) ListPasskeys(ctx context.Context, profileID uuid.UUID) ([]PasskeyCredential, error) {
	rows, err := s.pool.Query(ctx, `
        SELECT `+passkeyColumns+`
        FROM webauthn_credentials
        WHERE profile_id = $1
        ORDER BY created_at DESC
    `, profileID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var creds []PasskeyCredential
	for rows.Next() {
		cred, err := scanPasskey(rows)
		if err != nil {
			return nil, err
		}
		creds = append(creds, *cred)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return creds, nil
}

// GetPasskeyByCredentialID busca pela chave pública do autenticador.
func (s *AuthService) GetPasskeyByCredentialID(ctx context.Context, credentialID []byte) (*PasskeyCredential, error) {
	row := s.pool.QueryRow(ctx, `
        SELECT `+passkeyColumns+`
        FROM webauthn_credentials
        WHERE credential_id = $1
    `, credentialID)

	cred, err := scanPasskey(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPasskeyNotFound
		}
		return nil, err
	}
	return cred, nil
}

// CreatePasskey persiste credencial registrada.
func (s *AuthService) CreatePasskey(ctx context.Context, profileID uuid.UUID, credentialID, publicKey []byte, signCount uint32, transports []string, aaguid []byte, nickname *string, cloned bool) (*PasskeyCredential, error) {
	row := s.pool.QueryRow(ctx, `
        INSERT INTO webauthn_credentials (profile_id, credential_id, public_key, sign_count, transports, aaguid, nickname, cloned)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        RETURNING `+passkeyColumns+`
    `, profileID, credentialID, publicKey, int64(signCount), transports, aaguid, nickname, cloned)

	return scanPasskey(row)
}

// UpdatePasskeyCounter atualiza o contador de assinaturas após cada login.
func (s *AuthService) UpdatePasskeyCounter(ctx context.Context, credentialID uuid.UUID, signCount uint32, cloned bool) error {
	cmd, err := s.pool.Exec(ctx, `
        UPDATE webauthn_credentials
        SET sign_count = $2, cloned = $3, updated_at = now()
        WHERE id = $1
    `, credentialID, int64(signCount), cloned)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrPasskeyNotFound
	}
	return nil
}

func scanPasskey(row pgx.Row) (*PasskeyCredential, error) {
	var (
		cred PasskeyCredential
		sign int64
	)
	if err := row.Scan(&cred.ID, &cred.ProfileID, &cred.CredentialID, &cred.PublicKey, &sign, &cred.Transports, &cred.AAGUID, &cred.Nickname, &cred.Cloned, &cred.CreatedAt, &cred.UpdatedAt); err != nil {
		return nil, err
	}
	if sign < 0 {
		sign = 0
	}
	cred.SignCount = uint32(sign)
	return &cred, nil
}
