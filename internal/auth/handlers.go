package auth

import (
	"embed"
	"errors"
	"html/template"
	"net/http"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pawsitivecheck/syncconsole/internal/config"
	"github.com/pawsitivecheck/syncconsole/internal/entities"
)

//go:embed templates/*.html
var templateFS embed.FS

// AuthAuditor records login activity.
type AuthAuditor interface {
	LogAuth(userID uint, action string, ipAddr, userAgent string, success bool)
}

// isLocalPath reports whether path is safe to redirect to after login.
func isLocalPath(path string) bool {
	if path == "" || !strings.HasPrefix(path, "/") {
		return false
	}
	// Protocol-relative URLs (//evil.com) and backslash tricks leave the site.
	if strings.HasPrefix(path, "//") || strings.Contains(path, "://") || strings.Contains(path, "\\") {
		return false
	}
	return true
}

func sanitizeRedirectPath(path string) string {
	if isLocalPath(path) {
		return path
	}
	return "/admin/sync"
}

// AuthController serves the login, logout and first-run setup pages.
type AuthController struct {
	service        *Service
	sessionManager *SessionManager
	templates      *template.Template
	rateLimiter    *RateLimiter
	auditor        AuthAuditor
	logger         *zap.Logger

	// setupMu serializes setup so two requests cannot both see an empty users table.
	setupMu sync.Mutex
}

func NewAuthController(service *Service, sessionManager *SessionManager, cfg config.Auth, auditor AuthAuditor, logger *zap.Logger) (*AuthController, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &AuthController{
		service:        service,
		sessionManager: sessionManager,
		templates:      tmpl,
		rateLimiter: NewRateLimiter(RateLimitConfig{
			MaxAttempts:     cfg.MaxLoginAttempts,
			WindowDuration:  cfg.RateLimitWindow,
			LockoutDuration: cfg.LockoutDuration,
		}),
		auditor: auditor,
		logger:  logger,
	}, nil
}

// RegisterRoutes registers authentication routes on the router.
func (ac *AuthController) RegisterRoutes(router gin.IRoutes) {
	router.GET("/login", ac.LoginPage)
	router.POST("/login", ac.Login)
	router.POST("/logout", ac.Logout)
	router.GET("/setup", ac.SetupPage)
	router.POST("/setup", ac.Setup)
}

// Stop releases the rate limiter's cleanup goroutine.
func (ac *AuthController) Stop() {
	ac.rateLimiter.Stop()
}

func (ac *AuthController) LoginPage(c *gin.Context) {
	if ac.sessionManager.IsAuthenticated(c.Request) {
		c.Redirect(http.StatusFound, "/admin/sync")
		return
	}

	hasUsers, _ := ac.service.HasUsers()
	if !hasUsers {
		c.Redirect(http.StatusFound, "/setup")
		return
	}

	ac.render(c, http.StatusOK, "login.html", gin.H{
		"Title":     "Login",
		"Next":      sanitizeRedirectPath(c.Query("next")),
		"CSRFToken": GetCSRFToken(c),
		"Error":     c.Query("error"),
	})
}

func (ac *AuthController) Login(c *gin.Context) {
	username := c.PostForm("username")
	password := c.PostForm("password")
	next := sanitizeRedirectPath(c.PostForm("next"))
	clientIP := c.ClientIP()

	page := gin.H{
		"Title":     "Login",
		"Next":      next,
		"Username":  username,
		"CSRFToken": GetCSRFToken(c),
	}

	if allowed, retryAfter := ac.rateLimiter.Allow(clientIP, username); !allowed {
		c.Header("Retry-After", retryAfter.String())
		page["Error"] = "Too many login attempts. Please try again later."
		ac.render(c, http.StatusTooManyRequests, "login.html", page)
		return
	}

	user, err := ac.service.Authenticate(username, password)
	if err != nil {
		ac.rateLimiter.RecordFailure(clientIP, username)
		ac.audit(c, 0, "login", false)

		page["Error"] = "Invalid username or password"
		if errors.Is(err, ErrAccountLocked) {
			page["Error"] = "Account is locked. Please try again later."
		}
		ac.render(c, http.StatusUnauthorized, "login.html", page)
		return
	}

	ac.rateLimiter.RecordSuccess(clientIP, username)

	if err := ac.sessionManager.CreateSession(c.Request, user); err != nil {
		ac.logger.Error("Failed to create session", zap.String("username", username), zap.Error(err))
		page["Error"] = "Failed to create session"
		ac.render(c, http.StatusInternalServerError, "login.html", page)
		return
	}

	ac.audit(c, user.ID, "login", true)
	c.Redirect(http.StatusFound, next)
}

// Logout destroys the session. Any sync the console started keeps running
// and still records its outcome.
func (ac *AuthController) Logout(c *gin.Context) {
	userID := ac.sessionManager.GetUserID(c.Request)
	_ = ac.sessionManager.DestroySession(c.Request)
	if userID != 0 {
		ac.audit(c, userID, "logout", true)
	}
	c.Redirect(http.StatusFound, "/login")
}

func (ac *AuthController) SetupPage(c *gin.Context) {
	hasUsers, err := ac.service.HasUsers()
	if err != nil {
		ac.render(c, http.StatusInternalServerError, "setup.html", gin.H{
			"Title":     "Initial Setup",
			"CSRFToken": GetCSRFToken(c),
			"Error":     "Database error. Please try again.",
		})
		return
	}
	if hasUsers {
		c.Redirect(http.StatusFound, "/login")
		return
	}

	ac.render(c, http.StatusOK, "setup.html", gin.H{
		"Title":     "Initial Setup",
		"CSRFToken": GetCSRFToken(c),
		"Error":     c.Query("error"),
	})
}

// Setup creates the first admin account and signs it in.
func (ac *AuthController) Setup(c *gin.Context) {
	ac.setupMu.Lock()
	defer ac.setupMu.Unlock()

	hasUsers, err := ac.service.HasUsers()
	if err != nil {
		ac.render(c, http.StatusInternalServerError, "setup.html", gin.H{
			"Title":     "Initial Setup",
			"CSRFToken": GetCSRFToken(c),
			"Error":     "Database error. Please try again.",
		})
		return
	}
	if hasUsers {
		c.Redirect(http.StatusFound, "/login")
		return
	}

	username := c.PostForm("username")
	password := c.PostForm("password")
	page := gin.H{
		"Title":     "Initial Setup",
		"Username":  username,
		"CSRFToken": GetCSRFToken(c),
	}

	if password != c.PostForm("confirm_password") {
		page["Error"] = "Passwords do not match"
		ac.render(c, http.StatusBadRequest, "setup.html", page)
		return
	}

	user, err := ac.service.CreateUser(username, password, entities.UserRoleAdmin)
	if err != nil {
		switch {
		case errors.Is(err, ErrPasswordTooShort):
			page["Error"] = "Password must be at least 12 characters"
		case errors.Is(err, ErrPasswordTooLong):
			page["Error"] = "Password exceeds maximum length of 72 characters"
		case errors.Is(err, ErrUsernameRequired):
			page["Error"] = "Username is required"
		case errors.Is(err, ErrUsernameInvalid):
			page["Error"] = "Username must be 3-64 characters, alphanumeric with underscore/hyphen only"
		case errors.Is(err, ErrUserExists):
			c.Redirect(http.StatusFound, "/login")
			return
		default:
			ac.logger.Error("Failed to create admin", zap.Error(err))
			page["Error"] = "Failed to create user"
		}
		ac.render(c, http.StatusBadRequest, "setup.html", page)
		return
	}

	ac.logger.Info("Created first admin", zap.String("username", user.Username))
	ac.audit(c, user.ID, "setup", true)
	_ = ac.sessionManager.CreateSession(c.Request, user)

	c.Redirect(http.StatusFound, "/admin/sync")
}

func (ac *AuthController) audit(c *gin.Context, userID uint, action string, success bool) {
	if ac.auditor == nil {
		return
	}
	ac.auditor.LogAuth(userID, action, c.ClientIP(), c.Request.UserAgent(), success)
}

func (ac *AuthController) render(c *gin.Context, status int, name string, data gin.H) {
	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(status)
	if err := ac.templates.ExecuteTemplate(c.Writer, name, data); err != nil {
		ac.logger.Error("Template render failed", zap.String("template", name), zap.Error(err))
	}
}
