// Package handlers wires the telegram surface: student commands, admin
// commands and the inline-keyboard test flow.
package handlers

import (
	"context"
	"sync"
	"time"

	"gopkg.in/telebot.v3"
	"gopkg.in/telebot.v3/middleware"

	"github.com/m-ce-m1/html-bot/exporter"
	"github.com/m-ce-m1/html-bot/filestore"
	"github.com/m-ce-m1/html-bot/logger"
	"github.com/m-ce-m1/html-bot/quiz"
	"github.com/m-ce-m1/html-bot/storage"
	"github.com/m-ce-m1/html-bot/util"
)

const ctxUserKey = "user"

// Callback endpoints. The buttons themselves are built per message with
// menu.Data, only the uniques are fixed.
var (
	btnStartTest     = telebot.Btn{Unique: "start_test"}
	btnAnswer        = telebot.Btn{Unique: "answer"}
	btnFinishRetry   = telebot.Btn{Unique: "finish_retry"}
	btnCancelTest    = telebot.Btn{Unique: "cancel_test"}
	btnMaterialTopic = telebot.Btn{Unique: "materials"}

	btnToggleTopic   = telebot.Btn{Unique: "toggle_topic"}
	btnAttemptsTopic = telebot.Btn{Unique: "attempts_topic"}
	btnUploadTopic   = telebot.Btn{Unique: "upload_topic"}
	btnMaterialAdd   = telebot.Btn{Unique: "mat_add"}
	btnMaterialType  = telebot.Btn{Unique: "mat_type"}
	btnRemoveTopic   = telebot.Btn{Unique: "rm_topic"}
	btnRemoveMat     = telebot.Btn{Unique: "rm_mat"}
	btnExportTopic   = telebot.Btn{Unique: "export_topic"}
)

// Deps is everything the bot needs from main.
type Deps struct {
	Settings  *util.Settings
	Log       *logger.Logger
	Users     *storage.UserStore
	Topics    *storage.QuestionStore
	Ledger    *storage.AttemptLedger
	Materials *storage.MaterialStore
	Messages  *storage.MessageStore
	Quiz      *quiz.Service
	Files     filestore.Store
	Exports   *exporter.Exporter
}

type Bot struct {
	Deps
	tb *telebot.Bot

	mu      sync.Mutex
	pending map[int64]pendingInput
}

func New(deps Deps) (*Bot, error) {
	b := &Bot{Deps: deps, pending: map[int64]pendingInput{}}

	tb, err := telebot.NewBot(telebot.Settings{
		Token:  deps.Settings.BotToken,
		Poller: &telebot.LongPoller{Timeout: 10 * time.Second},
		OnError: func(err error, c telebot.Context) {
			var userID int64
			if c != nil && c.Sender() != nil {
				userID = c.Sender().ID
			}
			deps.Log.Error("bot handler error", "user_id", userID, "error", err)
		},
	})
	if err != nil {
		return nil, err
	}
	b.tb = tb
	b.routes()
	return b, nil
}

func (b *Bot) routes() {
	b.tb.Use(middleware.Recover())

	b.tb.Handle("/start", b.handleStart)
	b.tb.Handle("/help", b.handleHelp)
	b.tb.Handle("/cancel", b.handleCancel)

	b.tb.Handle("/topics", b.requireUser(b.handleTopics))
	b.tb.Handle("/test", b.requireUser(b.handleTest))
	b.tb.Handle("/stats", b.requireUser(b.handleStats))
	b.tb.Handle("/materials", b.requireUser(b.handleMaterials))
	b.tb.Handle("/ask", b.requireUser(b.handleAsk))

	b.tb.Handle(&btnStartTest, b.requireUser(b.handleStartTestCallback))
	b.tb.Handle(&btnAnswer, b.requireUser(b.handleAnswerCallback))
	b.tb.Handle(&btnFinishRetry, b.requireUser(b.handleFinishRetryCallback))
	b.tb.Handle(&btnCancelTest, b.requireUser(b.handleCancelTestCallback))
	b.tb.Handle(&btnMaterialTopic, b.requireUser(b.handleMaterialsCallback))

	b.tb.Handle("/admin", b.adminOnly(b.handleAdminHelp))
	b.tb.Handle("/add_topic", b.adminOnly(b.handleAddTopic))
	b.tb.Handle("/all_topics", b.adminOnly(b.handleAllTopics))
	b.tb.Handle("/toggle_topic", b.adminOnly(b.handleToggleTopic))
	b.tb.Handle("/set_attempts", b.adminOnly(b.handleSetAttempts))
	b.tb.Handle("/upload_test", b.adminOnly(b.handleUploadTest))
	b.tb.Handle("/questions", b.adminOnly(b.handleQuestions))
	b.tb.Handle("/reply", b.adminOnly(b.handleReply))
	b.tb.Handle("/add_material", b.adminOnly(b.handleAddMaterial))
	b.tb.Handle("/remove_material", b.adminOnly(b.handleRemoveMaterial))
	b.tb.Handle("/all_stats", b.adminOnly(b.handleAllStats))
	b.tb.Handle("/export_stats", b.adminOnly(b.handleExportStats))
	b.tb.Handle("/broadcast", b.adminOnly(b.handleBroadcast))
	b.tb.Handle("/backup_db", b.adminOnly(b.handleBackupDB))

	b.tb.Handle(&btnToggleTopic, b.adminOnly(b.handleToggleTopicCallback))
	b.tb.Handle(&btnAttemptsTopic, b.adminOnly(b.handleAttemptsTopicCallback))
	b.tb.Handle(&btnUploadTopic, b.adminOnly(b.handleUploadTopicCallback))
	b.tb.Handle(&btnMaterialAdd, b.adminOnly(b.handleMaterialTopicCallback))
	b.tb.Handle(&btnMaterialType, b.adminOnly(b.handleMaterialTypeCallback))
	b.tb.Handle(&btnRemoveTopic, b.adminOnly(b.handleRemoveTopicCallback))
	b.tb.Handle(&btnRemoveMat, b.adminOnly(b.handleRemoveMaterialCallback))
	b.tb.Handle(&btnExportTopic, b.adminOnly(b.handleExportTopicCallback))

	b.tb.Handle(telebot.OnText, b.handleText)
	b.tb.Handle(telebot.OnDocument, b.handleDocument)
}

// Start begins long polling and blocks until Stop.
func (b *Bot) Start() {
	b.Log.Info("bot started", "username", b.tb.Me.Username)
	b.tb.Start()
}

func (b *Bot) Stop() {
	b.tb.Stop()
}

// requireUser resolves the sender into a registered user and stashes it on
// the context. Unregistered users are pointed at /start.
func (b *Bot) requireUser(next telebot.HandlerFunc) telebot.HandlerFunc {
	return func(c telebot.Context) error {
		u, err := b.Users.Get(context.Background(), c.Sender().ID)
		if err != nil {
			return b.fail(c, err)
		}
		if u == nil {
			if c.Callback() != nil {
				_ = c.Respond(&telebot.CallbackResponse{})
			}
			return c.Send(msgNotRegistered)
		}
		c.Set(ctxUserKey, u)
		return next(c)
	}
}

func (b *Bot) adminOnly(next telebot.HandlerFunc) telebot.HandlerFunc {
	return func(c telebot.Context) error {
		if !b.Settings.IsAdmin(c.Sender().ID) {
			if c.Callback() != nil {
				return c.Respond(&telebot.CallbackResponse{Text: msgAdminsOnly})
			}
			return c.Send(msgAdminsOnly)
		}
		return next(c)
	}
}

// fail logs the real error and shows the user a neutral one.
func (b *Bot) fail(c telebot.Context, err error) error {
	b.Log.Error("handler failed", "user_id", c.Sender().ID, "error", err)
	if c.Callback() != nil {
		_ = c.Respond(&telebot.CallbackResponse{})
	}
	return c.Send(msgInternalError)
}

type pendingKind int

const (
	pendingName pendingKind = iota + 1
	pendingAsk
	pendingUpload
	pendingMaterial
	pendingAttempts
)

// pendingInput marks that the next free-form message from a user belongs to
// a multi-step flow. topicID is the upload or material target, nil meaning
// a general material; materialType is the kind picked in the add-material
// flow.
type pendingInput struct {
	kind         pendingKind
	topicID      *int64
	materialType string
}

func (b *Bot) setPending(userID int64, p pendingInput) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pending[userID] = p
}

func (b *Bot) getPending(userID int64) (pendingInput, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	p, ok := b.pending[userID]
	return p, ok
}

func (b *Bot) clearPending(userID int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.pending, userID)
}
