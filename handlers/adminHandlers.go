package handlers

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/telebot.v3"

	"github.com/m-ce-m1/html-bot/models"
	"github.com/m-ce-m1/html-bot/storage"
	"github.com/m-ce-m1/html-bot/util"
)

func (b *Bot) handleAdminHelp(c telebot.Context) error {
	return c.Send(msgAdminHelp)
}

func (b *Bot) handleAddTopic(c telebot.Context) error {
	ctx := context.Background()
	title := strings.TrimSpace(c.Message().Payload)
	if title == "" {
		return c.Send(msgAddTopicUsage)
	}

	existing, err := b.Topics.GetTopicByTitle(ctx, title)
	if err != nil {
		return b.fail(c, err)
	}
	if existing != nil {
		return c.Send(msgTopicExists)
	}

	topic, err := b.Topics.CreateTopic(ctx, title, b.Settings.DefaultAttemptLimit)
	if err != nil {
		return b.fail(c, err)
	}
	b.Log.Info("topic created", "topic_id", topic.ID, "title", topic.Title)
	return c.Send(fmt.Sprintf(msgTopicCreated, topic.Title, topic.ID, topic.ID))
}

func (b *Bot) handleAllTopics(c telebot.Context) error {
	topics, err := b.Topics.ListTopics(context.Background())
	if err != nil {
		return b.fail(c, err)
	}
	if len(topics) == 0 {
		return c.Send(msgNoTopicsYet)
	}

	var sb strings.Builder
	sb.WriteString(msgAllTopicsHeader)
	for _, t := range topics {
		status := "скрыта"
		if t.IsAvailable {
			status = "открыта"
		}
		fmt.Fprintf(&sb, "\n[%d] %s — %s, вопросов: %d, попыток: %s",
			t.ID, t.Title, status, t.Questions, limitText(t.AttemptLimit))
	}
	return c.Send(sb.String())
}

// pickAllTopics sends an inline keyboard of every topic, hidden ones
// included, wired to the given callback unique. head buttons come first.
func (b *Bot) pickAllTopics(c telebot.Context, prompt, unique string, head ...telebot.Btn) error {
	topics, err := b.Topics.ListTopics(context.Background())
	if err != nil {
		return b.fail(c, err)
	}
	if len(topics) == 0 && len(head) == 0 {
		return c.Send(msgNoTopicsYet)
	}

	markup := &telebot.ReplyMarkup{}
	rows := make([]telebot.Row, 0, len(topics)+len(head))
	for _, btn := range head {
		rows = append(rows, markup.Row(btn))
	}
	rows = append(rows, topicButtons(markup, unique, topics)...)
	markup.Inline(rows...)
	return c.Send(prompt, markup)
}

func (b *Bot) handleToggleTopic(c telebot.Context) error {
	payload := strings.TrimSpace(c.Message().Payload)
	if payload == "" {
		return b.pickAllTopics(c, msgPickTopicToggle, btnToggleTopic.Unique)
	}
	id, err := strconv.ParseInt(payload, 10, 64)
	if err != nil {
		return c.Send(msgTopicNotFound)
	}
	reply, err := b.toggleTopic(context.Background(), id)
	if err != nil {
		return b.fail(c, err)
	}
	return c.Send(reply)
}

func (b *Bot) handleToggleTopicCallback(c telebot.Context) error {
	id, err := strconv.ParseInt(strings.TrimSpace(c.Data()), 10, 64)
	if err != nil {
		return c.Respond(&telebot.CallbackResponse{Text: msgInternalError})
	}
	reply, err := b.toggleTopic(context.Background(), id)
	if err != nil {
		return b.fail(c, err)
	}
	_ = c.Respond(&telebot.CallbackResponse{})
	return c.Edit(reply)
}

func (b *Bot) toggleTopic(ctx context.Context, id int64) (string, error) {
	topic, err := b.Topics.GetTopic(ctx, id)
	if err != nil {
		return "", err
	}
	if topic == nil {
		return msgTopicNotFound, nil
	}

	if err := b.Topics.SetAvailability(ctx, id, !topic.IsAvailable); err != nil {
		return "", err
	}
	b.Log.Info("topic toggled", "topic_id", id, "available", !topic.IsAvailable)

	if topic.IsAvailable {
		return fmt.Sprintf(msgTopicHidden, topic.Title), nil
	}
	reply := fmt.Sprintf(msgTopicOpened, topic.Title)
	if topic.Questions < b.Settings.TestLength {
		reply += fmt.Sprintf(msgFewQuestions, topic.Questions, b.Settings.TestLength)
	}
	return reply, nil
}

func (b *Bot) handleSetAttempts(c telebot.Context) error {
	payload := strings.TrimSpace(c.Message().Payload)
	if payload == "" {
		return b.pickAllTopics(c, msgPickTopicAttempts, btnAttemptsTopic.Unique)
	}

	fields := strings.Fields(payload)
	if len(fields) != 2 {
		return c.Send(msgSetAttemptsUse)
	}
	id, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil {
		return c.Send(msgSetAttemptsUse)
	}
	limit, err := util.ParseAttemptLimit(fields[1])
	if err != nil {
		return c.Send(msgSetAttemptsUse)
	}
	reply, err := b.applyAttemptLimit(context.Background(), id, limit)
	if err != nil {
		return b.fail(c, err)
	}
	return c.Send(reply)
}

func (b *Bot) handleAttemptsTopicCallback(c telebot.Context) error {
	ctx := context.Background()
	id, err := strconv.ParseInt(strings.TrimSpace(c.Data()), 10, 64)
	if err != nil {
		return c.Respond(&telebot.CallbackResponse{Text: msgInternalError})
	}
	topic, err := b.Topics.GetTopic(ctx, id)
	if err != nil {
		return b.fail(c, err)
	}
	if topic == nil {
		_ = c.Respond(&telebot.CallbackResponse{})
		return c.Edit(msgTopicNotFound)
	}

	b.setPending(c.Sender().ID, pendingInput{kind: pendingAttempts, topicID: &id})
	_ = c.Respond(&telebot.CallbackResponse{})
	return c.Edit(fmt.Sprintf(msgEnterAttempts, topic.Title, limitText(topic.AttemptLimit)))
}

// setAttemptsFromText finishes the /set_attempts picker flow with the
// number (or "unlimited") the admin typed.
func (b *Bot) setAttemptsFromText(c telebot.Context, p pendingInput) error {
	limit, err := util.ParseAttemptLimit(strings.TrimSpace(c.Text()))
	if err != nil {
		return c.Send(msgBadAttempts)
	}
	reply, err := b.applyAttemptLimit(context.Background(), *p.topicID, limit)
	if err != nil {
		return b.fail(c, err)
	}
	b.clearPending(c.Sender().ID)
	return c.Send(reply)
}

func (b *Bot) applyAttemptLimit(ctx context.Context, id int64, limit *int) (string, error) {
	topic, err := b.Topics.GetTopic(ctx, id)
	if err != nil {
		return "", err
	}
	if topic == nil {
		return msgTopicNotFound, nil
	}
	if err := b.Topics.SetAttemptLimit(ctx, id, limit); err != nil {
		return "", err
	}
	b.Log.Info("attempt limit set", "topic_id", id, "limit", limitText(limit))
	return fmt.Sprintf(msgLimitSet, topic.Title, limitText(limit)), nil
}

func (b *Bot) handleUploadTest(c telebot.Context) error {
	payload := strings.TrimSpace(c.Message().Payload)
	if payload == "" {
		return b.pickAllTopics(c, msgPickTopicUpload, btnUploadTopic.Unique)
	}
	id, err := strconv.ParseInt(payload, 10, 64)
	if err != nil {
		return c.Send(msgUploadUsage)
	}
	reply, err := b.startUpload(c.Sender().ID, id)
	if err != nil {
		return b.fail(c, err)
	}
	return c.Send(reply)
}

func (b *Bot) handleUploadTopicCallback(c telebot.Context) error {
	id, err := strconv.ParseInt(strings.TrimSpace(c.Data()), 10, 64)
	if err != nil {
		return c.Respond(&telebot.CallbackResponse{Text: msgInternalError})
	}
	reply, err := b.startUpload(c.Sender().ID, id)
	if err != nil {
		return b.fail(c, err)
	}
	_ = c.Respond(&telebot.CallbackResponse{})
	return c.Edit(reply)
}

func (b *Bot) startUpload(adminID, topicID int64) (string, error) {
	topic, err := b.Topics.GetTopic(context.Background(), topicID)
	if err != nil {
		return "", err
	}
	if topic == nil {
		return msgTopicNotFound, nil
	}
	b.setPending(adminID, pendingInput{kind: pendingUpload, topicID: &topicID})
	return fmt.Sprintf(msgSendFile, topic.Title), nil
}

func (b *Bot) handleQuestions(c telebot.Context) error {
	ctx := context.Background()
	messages, err := b.Messages.Unanswered(ctx)
	if err != nil {
		return b.fail(c, err)
	}
	if len(messages) == 0 {
		return c.Send(msgNoStudentQuestions)
	}

	var sb strings.Builder
	sb.WriteString(msgQuestionsHeader)
	for _, m := range messages {
		name := fmt.Sprintf("id %d", m.FromUserID)
		if u, err := b.Users.Get(ctx, m.FromUserID); err == nil && u != nil {
			name = u.FullName
		}
		fmt.Fprintf(&sb, "\n[%d] %s, %s:\n%s\n", m.ID, name, m.Timestamp.Format("02.01 15:04"), m.Text)
	}
	sb.WriteString(msgReplyHint)
	return c.Send(sb.String())
}

func (b *Bot) handleReply(c telebot.Context) error {
	ctx := context.Background()
	parts := strings.SplitN(strings.TrimSpace(c.Message().Payload), " ", 2)
	if len(parts) != 2 {
		return c.Send(msgReplyUsage)
	}
	id, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return c.Send(msgReplyUsage)
	}
	reply := strings.TrimSpace(parts[1])
	if reply == "" {
		return c.Send(msgReplyUsage)
	}

	m, err := b.Messages.Get(ctx, id)
	if err != nil {
		return b.fail(c, err)
	}
	if m == nil {
		return c.Send(msgMessageNotFound)
	}

	if _, err := b.tb.Send(&telebot.User{ID: m.FromUserID}, fmt.Sprintf(msgTeacherReply, m.Text, reply)); err != nil {
		return b.fail(c, err)
	}
	if err := b.Messages.MarkAnswered(ctx, id, c.Sender().ID); err != nil {
		return b.fail(c, err)
	}
	b.Log.Info("question answered", "message_id", id, "admin_id", c.Sender().ID)
	return c.Send(msgReplySent)
}

func (b *Bot) handleAddMaterial(c telebot.Context) error {
	payload := strings.TrimSpace(c.Message().Payload)
	if payload == "" {
		general := telebot.Btn{Text: msgGeneralButton, Unique: btnMaterialAdd.Unique, Data: "general"}
		return b.pickAllTopics(c, msgPickTopicMaterial, btnMaterialAdd.Unique, general)
	}

	topicID, err := parseMaterialTarget(payload)
	if err != nil {
		return c.Send(msgTopicNotFound)
	}
	if topicID != nil {
		topic, err := b.Topics.GetTopic(context.Background(), *topicID)
		if err != nil {
			return b.fail(c, err)
		}
		if topic == nil {
			return c.Send(msgTopicNotFound)
		}
	}
	return c.Send(msgPickMaterialType, materialTypeMarkup(payload))
}

func (b *Bot) handleMaterialTopicCallback(c telebot.Context) error {
	token := strings.TrimSpace(c.Data())
	topicID, err := parseMaterialTarget(token)
	if err != nil {
		return c.Respond(&telebot.CallbackResponse{Text: msgInternalError})
	}
	if topicID != nil {
		topic, terr := b.Topics.GetTopic(context.Background(), *topicID)
		if terr != nil {
			return b.fail(c, terr)
		}
		if topic == nil {
			_ = c.Respond(&telebot.CallbackResponse{})
			return c.Edit(msgTopicNotFound)
		}
	}
	_ = c.Respond(&telebot.CallbackResponse{})
	return c.Edit(msgPickMaterialType, materialTypeMarkup(token))
}

func (b *Bot) handleMaterialTypeCallback(c telebot.Context) error {
	token, mtype, ok := strings.Cut(strings.TrimSpace(c.Data()), "|")
	if !ok {
		return c.Respond(&telebot.CallbackResponse{Text: msgInternalError})
	}
	topicID, err := parseMaterialTarget(token)
	if err != nil {
		return c.Respond(&telebot.CallbackResponse{Text: msgInternalError})
	}

	b.setPending(c.Sender().ID, pendingInput{kind: pendingMaterial, topicID: topicID, materialType: mtype})
	_ = c.Respond(&telebot.CallbackResponse{})
	switch mtype {
	case models.MaterialLink:
		return c.Edit(msgSendMaterialLink)
	case models.MaterialFile:
		return c.Edit(msgSendMaterialFile)
	default:
		return c.Edit(msgSendMaterialText)
	}
}

// parseMaterialTarget maps a picker token to a topic id, nil meaning the
// general shelf.
func parseMaterialTarget(token string) (*int64, error) {
	if token == "general" {
		return nil, nil
	}
	id, err := strconv.ParseInt(token, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("bad material target %q", token)
	}
	return &id, nil
}

func materialTypeMarkup(token string) *telebot.ReplyMarkup {
	markup := &telebot.ReplyMarkup{}
	markup.Inline(markup.Row(
		markup.Data(msgBtnMatLink, btnMaterialType.Unique, token, models.MaterialLink),
		markup.Data(msgBtnMatFile, btnMaterialType.Unique, token, models.MaterialFile),
		markup.Data(msgBtnMatText, btnMaterialType.Unique, token, models.MaterialText),
	))
	return markup
}

func (b *Bot) handleRemoveMaterial(c telebot.Context) error {
	payload := strings.TrimSpace(c.Message().Payload)
	if payload == "" {
		general := telebot.Btn{Text: msgGeneralButton, Unique: btnRemoveTopic.Unique, Data: "general"}
		return b.pickAllTopics(c, msgPickTopicRemove, btnRemoveTopic.Unique, general)
	}
	id, err := strconv.ParseInt(payload, 10, 64)
	if err != nil {
		return c.Send(msgRemoveUsage)
	}
	reply, err := b.removeMaterial(context.Background(), id)
	if err != nil {
		return b.fail(c, err)
	}
	return c.Send(reply)
}

func (b *Bot) handleRemoveTopicCallback(c telebot.Context) error {
	topicID, err := parseMaterialTarget(strings.TrimSpace(c.Data()))
	if err != nil {
		return c.Respond(&telebot.CallbackResponse{Text: msgInternalError})
	}

	materials, err := b.Materials.ListForTopic(context.Background(), topicID)
	if err != nil {
		return b.fail(c, err)
	}
	_ = c.Respond(&telebot.CallbackResponse{})
	if len(materials) == 0 {
		return c.Edit(msgNoMaterials)
	}

	markup := &telebot.ReplyMarkup{}
	rows := make([]telebot.Row, 0, len(materials))
	for _, m := range materials {
		btn := markup.Data(m.Title, btnRemoveMat.Unique, strconv.FormatInt(m.ID, 10))
		rows = append(rows, markup.Row(btn))
	}
	markup.Inline(rows...)
	return c.Edit(msgPickMaterial, markup)
}

func (b *Bot) handleRemoveMaterialCallback(c telebot.Context) error {
	id, err := strconv.ParseInt(strings.TrimSpace(c.Data()), 10, 64)
	if err != nil {
		return c.Respond(&telebot.CallbackResponse{Text: msgInternalError})
	}
	reply, err := b.removeMaterial(context.Background(), id)
	if err != nil {
		return b.fail(c, err)
	}
	_ = c.Respond(&telebot.CallbackResponse{})
	return c.Edit(reply)
}

func (b *Bot) removeMaterial(ctx context.Context, id int64) (string, error) {
	m, err := b.Materials.Remove(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return msgMaterialGone, nil
	}
	if err != nil {
		return "", err
	}
	if m.Type == models.MaterialFile {
		if err := b.Files.Delete(ctx, m.Content); err != nil {
			b.Log.Warn("material blob delete failed", "material_id", id, "key", m.Content, "error", err)
		}
	}
	b.Log.Info("material removed", "material_id", id, "title", m.Title)
	return fmt.Sprintf(msgMaterialRemoved, m.Title), nil
}

func (b *Bot) handleAllStats(c telebot.Context) error {
	summary, err := b.Ledger.Summary(context.Background())
	if err != nil {
		return b.fail(c, err)
	}
	if summary.TotalAttempts == 0 {
		return c.Send(msgNoStatsYet)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Всего попыток: %d\nСтудентов с попытками: %d\nСредний результат: %.1f%%\n\nПо темам:",
		summary.TotalAttempts, summary.Students, summary.AveragePercent)
	for _, t := range summary.Topics {
		if t.Attempts == 0 {
			fmt.Fprintf(&sb, "\n%s — попыток нет", t.Title)
			continue
		}
		fmt.Fprintf(&sb, "\n%s — попыток: %d, средний результат: %.1f%%", t.Title, t.Attempts, t.AveragePercent)
	}
	return c.Send(sb.String())
}

func (b *Bot) handleExportStats(c telebot.Context) error {
	all := telebot.Btn{Text: msgAllTopicsButton, Unique: btnExportTopic.Unique, Data: "all"}
	return b.pickAllTopics(c, msgPickTopicExport, btnExportTopic.Unique, all)
}

func (b *Bot) handleExportTopicCallback(c telebot.Context) error {
	ctx := context.Background()
	data := strings.TrimSpace(c.Data())

	filters := storage.StatFilters{}
	if data != "all" {
		id, err := strconv.ParseInt(data, 10, 64)
		if err != nil {
			return c.Respond(&telebot.CallbackResponse{Text: msgInternalError})
		}
		filters.TopicID = &id
	}

	rows, err := b.Ledger.Filtered(ctx, filters)
	if err != nil {
		return b.fail(c, err)
	}
	_ = c.Respond(&telebot.CallbackResponse{})
	if len(rows) == 0 {
		return c.Edit(msgNoStatsYet)
	}

	path, err := b.Exports.WriteStats(rows)
	if err != nil {
		return b.fail(c, err)
	}
	b.Log.Info("stats exported", "rows", len(rows), "file", path)
	if err := c.Edit(msgExporting); err != nil {
		return err
	}
	return c.Send(&telebot.Document{File: telebot.FromDisk(path), FileName: filepath.Base(path)})
}

func (b *Bot) handleBroadcast(c telebot.Context) error {
	text := strings.TrimSpace(c.Message().Payload)
	if text == "" {
		return c.Send(msgBroadcastUse)
	}

	students, err := b.Users.ListByRole(context.Background(), models.RoleStudent)
	if err != nil {
		return b.fail(c, err)
	}
	sent := 0
	for _, u := range students {
		if _, err := b.tb.Send(&telebot.User{ID: u.ID}, text); err != nil {
			b.Log.Warn("broadcast send failed", "user_id", u.ID, "error", err)
			continue
		}
		sent++
	}
	b.Log.Info("broadcast finished", "sent", sent, "students", len(students))
	return c.Send(fmt.Sprintf(msgBroadcastDone, sent, len(students)))
}

func (b *Bot) handleBackupDB(c telebot.Context) error {
	if b.Settings.DBDriver != "sqlite" {
		return c.Send(msgBackupSqlite)
	}
	path, ok := sqliteDBPath(b.Settings.DBDSN)
	if !ok {
		return c.Send(msgBackupNoFile)
	}
	return c.Send(&telebot.Document{File: telebot.FromDisk(path), FileName: filepath.Base(path)})
}

// sqliteDBPath extracts the file path from a sqlite DSN. In-memory
// databases have no file to back up.
func sqliteDBPath(dsn string) (string, bool) {
	path := strings.TrimPrefix(dsn, "file:")
	if i := strings.IndexByte(path, '?'); i >= 0 {
		params := path[i+1:]
		path = path[:i]
		if strings.Contains(params, "mode=memory") {
			return "", false
		}
	}
	if path == "" || path == ":memory:" {
		return "", false
	}
	return path, true
}

func limitText(limit *int) string {
	if limit == nil {
		return "без ограничений"
	}
	return strconv.Itoa(*limit)
}
