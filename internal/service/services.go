package service

import (
	"github.com/hyunwoo/beluga-backend/internal/config"
	"github.com/hyunwoo/beluga-backend/internal/mail"
	"github.com/hyunwoo/beluga-backend/internal/repository"
	"github.com/hyunwoo/beluga-backend/internal/token"
	"gorm.io/gorm"
)

type Services struct {
	Session *SessionService
	Account *AccountService
	Auth    *AuthService
	Profile *ProfileService
	File    *FileService
}

func NewServices(db *gorm.DB, repos *repository.Repositories, mailer mail.Mailer, oauthProvider OauthProvider, cfg *config.Config) *Services {
	codec := token.NewCodec(cfg.JWTSecret, cfg.JWTIssuer)

	sessions := NewSessionService(repos.Session, codec)
	accounts := NewAccountService(repos.Account, sessions, codec)

	return &Services{
		Session: sessions,
		Account: accounts,
		Auth:    NewAuthService(db, mailer, oauthProvider, accounts, sessions, repos.ArchivedAccount),
		Profile: NewProfileService(db, accounts),
		File:    NewFileService(db, repos.UploadDetail, cfg.FilesPath),
	}
}
