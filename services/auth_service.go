package services

import (
	"errors"
	"fmt"

	"github.com/vikascool786/mezbaani-desktop/database"
	"github.com/vikascool786/mezbaani-desktop/events"
	"github.com/vikascool786/mezbaani-desktop/models"
	"github.com/vikascool786/mezbaani-desktop/utils"
	"gorm.io/gorm"
)

// ErrNotAuthenticated means no session row exists locally. Master syncs
// refuse to run without one; best-effort mirrors just skip.
var ErrNotAuthenticated = errors.New("not authenticated")

// AuthService owns the single-row auth session.
type AuthService struct {
	db    *gorm.DB
	queue *database.WriteQueue
	api   *APIClient
}

func NewAuthService(db *gorm.DB, queue *database.WriteQueue, api *APIClient) *AuthService {
	return &AuthService{db: db, queue: queue, api: api}
}

// Login exchanges credentials with the remote service and replaces the
// session row wholesale. Remote failure leaves any existing session alone.
func (as *AuthService) Login(phone, password string) (*models.AuthSession, error) {
	result, err := as.api.Login(phone, password)
	if err != nil {
		return nil, fmt.Errorf("login failed: %w", err)
	}

	user := result.User
	// The login payload occasionally omits user fields; the token claims
	// carry id/phone/roleName and fill the gaps.
	if claims, err := utils.ParseSessionClaims(result.Token); err == nil {
		if user.ID == "" {
			user.ID = claims.UserID
		}
		if user.Phone == "" {
			user.Phone = claims.Phone
		}
		if user.RoleName == "" {
			user.RoleName = claims.RoleName
		}
	}

	session := models.AuthSession{
		ID:           models.AuthSessionID,
		Token:        result.Token,
		UserID:       user.ID,
		Name:         user.Name,
		Phone:        user.Phone,
		Email:        user.Email,
		RoleName:     user.RoleName,
		RestaurantID: user.RestaurantID,
		LoggedInAt:   utils.NowISO(),
	}

	err = as.queue.DoTx(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&models.AuthSession{}).Error; err != nil {
			return err
		}
		return tx.Create(&session).Error
	})
	if err != nil {
		return nil, fmt.Errorf("persist session: %w", err)
	}

	utils.InfoLogger.Printf("Logged in as %s (%s)", session.Name, session.RoleName)
	events.BroadcastSessionUpdate(true)
	return &session, nil
}

// Session returns the current session row, or nil when logged out.
func (as *AuthService) Session() (*models.AuthSession, error) {
	var session models.AuthSession
	err := as.db.First(&session, models.AuthSessionID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// Token returns the stored bearer token, read before every authenticated
// remote call.
func (as *AuthService) Token() (string, error) {
	session, err := as.Session()
	if err != nil {
		return "", err
	}
	if session == nil || session.Token == "" {
		return "", ErrNotAuthenticated
	}
	if utils.TokenExpired(session.Token) {
		utils.InfoLogger.Println("Stored session token is past its expiry; remote may reject it")
	}
	return session.Token, nil
}

// Logout deletes the session row. Idempotent.
func (as *AuthService) Logout() error {
	err := as.queue.Do(func(db *gorm.DB) error {
		return db.Where("1 = 1").Delete(&models.AuthSession{}).Error
	})
	if err != nil {
		return err
	}
	events.BroadcastSessionUpdate(false)
	return nil
}
