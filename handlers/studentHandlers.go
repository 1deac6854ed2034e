package handlers

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/telebot.v3"

	"github.com/m-ce-m1/html-bot/models"
	"github.com/m-ce-m1/html-bot/quiz"
)

func (b *Bot) handleStart(c telebot.Context) error {
	ctx := context.Background()
	sender := c.Sender()

	u, err := b.Users.Get(ctx, sender.ID)
	if err != nil {
		return b.fail(c, err)
	}
	if u != nil {
		return c.Send(fmt.Sprintf(msgWelcomeBack, u.FullName), b.mainMenu(sender.ID))
	}
	b.setPending(sender.ID, pendingInput{kind: pendingName})
	return c.Send(msgAskName)
}

func (b *Bot) handleHelp(c telebot.Context) error {
	if b.Settings.IsAdmin(c.Sender().ID) {
		return c.Send(msgHelp + "\n\n" + msgHelpAdminHint)
	}
	return c.Send(msgHelp)
}

// handleCancel drops whatever the user was in the middle of: a pending
// input flow and any running test.
func (b *Bot) handleCancel(c telebot.Context) error {
	userID := c.Sender().ID
	b.clearPending(userID)
	if err := b.Quiz.Abandon(context.Background(), userID); err != nil {
		return b.fail(c, err)
	}
	return c.Send(msgCancelled)
}

func (b *Bot) handleTopics(c telebot.Context) error {
	topics, err := b.Topics.ListAvailableTopics(context.Background())
	if err != nil {
		return b.fail(c, err)
	}
	if len(topics) == 0 {
		return c.Send(msgNoTopics)
	}

	var sb strings.Builder
	sb.WriteString(msgTopicsHeader)
	for _, t := range topics {
		fmt.Fprintf(&sb, "\n• %s — вопросов: %d, %s", t.Title, t.Questions, attemptsText(t.AttemptLimit))
	}
	return c.Send(sb.String())
}

func (b *Bot) handleTest(c telebot.Context) error {
	topics, err := b.Topics.ListAvailableTopics(context.Background())
	if err != nil {
		return b.fail(c, err)
	}
	if len(topics) == 0 {
		return c.Send(msgNoTopics)
	}

	markup := &telebot.ReplyMarkup{}
	markup.Inline(topicButtons(markup, btnStartTest.Unique, topics)...)
	return c.Send(msgChooseTopic, markup)
}

func (b *Bot) handleStartTestCallback(c telebot.Context) error {
	topicID, err := strconv.ParseInt(strings.TrimSpace(c.Data()), 10, 64)
	if err != nil {
		return c.Respond(&telebot.CallbackResponse{Text: msgInternalError})
	}

	view, err := b.Quiz.StartTest(context.Background(), c.Sender().ID, topicID)
	if err != nil {
		var rej *quiz.Rejection
		if errors.As(err, &rej) {
			_ = c.Respond(&telebot.CallbackResponse{})
			return c.Edit(rejectionText(rej))
		}
		return b.fail(c, err)
	}

	_ = c.Respond(&telebot.CallbackResponse{})
	text, markup := questionMessage(view)
	return c.Edit(text, markup)
}

func (b *Bot) handleAnswerCallback(c telebot.Context) error {
	idx, option, err := parseAnswerData(c.Data())
	if err != nil {
		return c.Respond(&telebot.CallbackResponse{Text: msgInternalError})
	}
	userID := c.Sender().ID

	res, err := b.Quiz.SubmitAnswer(context.Background(), userID, idx, option)
	switch {
	case errors.Is(err, quiz.ErrNoActiveSession):
		_ = c.Respond(&telebot.CallbackResponse{})
		return c.Edit(msgNoActiveTest)
	case errors.Is(err, quiz.ErrInvalidOption):
		return c.Respond(&telebot.CallbackResponse{Text: msgInternalError})
	case err != nil:
		// the answers are in, only the commit is missing
		b.Log.Error("attempt commit failed", "user_id", userID, "error", err)
		_ = c.Respond(&telebot.CallbackResponse{})
		return c.Edit(msgSaveFailed, retryMarkup())
	}

	switch {
	case res.Stale:
		return c.Respond(&telebot.CallbackResponse{Text: msgAlreadyDone})
	case res.Next != nil:
		_ = c.Respond(&telebot.CallbackResponse{})
		text, markup := questionMessage(res.Next)
		return c.Edit(text, markup)
	default:
		_ = c.Respond(&telebot.CallbackResponse{})
		return c.Edit(resultText(res.Completed))
	}
}

func (b *Bot) handleFinishRetryCallback(c telebot.Context) error {
	userID := c.Sender().ID
	ctx := context.Background()

	done, err := b.Quiz.Finish(ctx, userID)
	if err == nil {
		_ = c.Respond(&telebot.CallbackResponse{})
		return c.Edit(resultText(done))
	}
	if errors.Is(err, quiz.ErrNoActiveSession) {
		_ = c.Respond(&telebot.CallbackResponse{})
		return c.Edit(msgNoActiveTest)
	}
	if errors.Is(err, quiz.ErrSessionNotFinished) {
		view, perr := b.Quiz.Peek(ctx, userID)
		if perr == nil && view != nil {
			_ = c.Respond(&telebot.CallbackResponse{})
			text, markup := questionMessage(view)
			return c.Edit(text, markup)
		}
		return b.fail(c, err)
	}
	b.Log.Error("attempt commit retry failed", "user_id", userID, "error", err)
	return c.Respond(&telebot.CallbackResponse{Text: msgStillFailing})
}

func (b *Bot) handleCancelTestCallback(c telebot.Context) error {
	if err := b.Quiz.Abandon(context.Background(), c.Sender().ID); err != nil {
		return b.fail(c, err)
	}
	_ = c.Respond(&telebot.CallbackResponse{})
	return c.Edit(msgTestCancelled)
}

func (b *Bot) handleStats(c telebot.Context) error {
	attempts, err := b.Ledger.ListByUser(context.Background(), c.Sender().ID, 10)
	if err != nil {
		return b.fail(c, err)
	}
	if len(attempts) == 0 {
		return c.Send(msgNoAttempts)
	}

	var sb strings.Builder
	sb.WriteString(msgStatsHeader)
	for _, a := range attempts {
		fmt.Fprintf(&sb, "\n%s — %d из %d (попытка %d, %s)",
			a.TopicTitle, a.Score, a.MaxScore, a.AttemptNumber, a.Timestamp.Format("02.01.2006 15:04"))
	}
	return c.Send(sb.String())
}

func (b *Bot) handleMaterials(c telebot.Context) error {
	topics, err := b.Topics.ListAvailableTopics(context.Background())
	if err != nil {
		return b.fail(c, err)
	}

	markup := &telebot.ReplyMarkup{}
	rows := []telebot.Row{
		markup.Row(markup.Data(msgGeneralButton, btnMaterialTopic.Unique, "general")),
	}
	rows = append(rows, topicButtons(markup, btnMaterialTopic.Unique, topics)...)
	markup.Inline(rows...)
	return c.Send(msgMaterialsWhich, markup)
}

func (b *Bot) handleMaterialsCallback(c telebot.Context) error {
	ctx := context.Background()
	data := strings.TrimSpace(c.Data())

	var topicID *int64
	if data != "general" {
		id, err := strconv.ParseInt(data, 10, 64)
		if err != nil {
			return c.Respond(&telebot.CallbackResponse{Text: msgInternalError})
		}
		topicID = &id
	}

	materials, err := b.Materials.ListForTopic(ctx, topicID)
	if err != nil {
		return b.fail(c, err)
	}
	_ = c.Respond(&telebot.CallbackResponse{})
	if len(materials) == 0 {
		return c.Edit(msgNoMaterials)
	}

	if err := c.Edit(msgMaterialsCome); err != nil {
		return err
	}
	for _, m := range materials {
		if err := b.sendMaterial(ctx, c, m); err != nil {
			b.Log.Warn("material send failed", "material_id", m.ID, "error", err)
		}
	}
	return nil
}

func (b *Bot) sendMaterial(ctx context.Context, c telebot.Context, m models.Material) error {
	switch m.Type {
	case models.MaterialFile:
		rc, err := b.Files.Get(ctx, m.Content)
		if err != nil {
			return err
		}
		defer rc.Close()
		return c.Send(&telebot.Document{File: telebot.FromReader(rc), FileName: m.Title})
	case models.MaterialLink:
		markup := &telebot.ReplyMarkup{}
		markup.Inline(markup.Row(markup.URL(msgOpenLink, m.Content)))
		return c.Send(m.Title, markup)
	default:
		return c.Send(m.Title + "\n\n" + m.Content)
	}
}

func (b *Bot) handleAsk(c telebot.Context) error {
	b.setPending(c.Sender().ID, pendingInput{kind: pendingAsk})
	return c.Send(msgAskPrompt)
}

func (b *Bot) mainMenu(userID int64) *telebot.ReplyMarkup {
	menu := &telebot.ReplyMarkup{ResizeKeyboard: true}
	rows := []telebot.Row{
		menu.Row(menu.Text("/test"), menu.Text("/topics")),
		menu.Row(menu.Text("/stats"), menu.Text("/materials")),
		menu.Row(menu.Text("/ask"), menu.Text("/help")),
	}
	if b.Settings.IsAdmin(userID) {
		rows = append(rows, menu.Row(menu.Text("/admin")))
	}
	menu.Reply(rows...)
	return menu
}

// topicButtons builds one inline button row per topic for the picker
// keyboards, carrying the topic id as callback data.
func topicButtons(markup *telebot.ReplyMarkup, unique string, topics []models.Topic) []telebot.Row {
	rows := make([]telebot.Row, 0, len(topics))
	for _, t := range topics {
		btn := markup.Data(t.Title, unique, strconv.FormatInt(t.ID, 10))
		rows = append(rows, markup.Row(btn))
	}
	return rows
}

// questionMessage renders one question with an A-D inline keyboard. The
// callback data carries the question index so a double tap on an old
// message cannot answer the wrong question.
func questionMessage(q *quiz.QuestionPresented) (string, *telebot.ReplyMarkup) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Вопрос %d из %d\n\n%s\n\n", q.Position, q.Total, q.Prompt)
	for _, opt := range q.Options {
		fmt.Fprintf(&sb, "%s. %s\n", opt.Label, opt.Text)
	}

	markup := &telebot.ReplyMarkup{}
	answers := make([]telebot.Btn, 0, len(q.Options))
	for _, opt := range q.Options {
		answers = append(answers, markup.Data(opt.Label, btnAnswer.Unique,
			strconv.Itoa(q.Index), strconv.Itoa(opt.Index)))
	}
	markup.Inline(
		markup.Row(answers...),
		markup.Row(markup.Data(msgBtnCancelTest, btnCancelTest.Unique)),
	)
	return sb.String(), markup
}

func retryMarkup() *telebot.ReplyMarkup {
	markup := &telebot.ReplyMarkup{}
	markup.Inline(markup.Row(markup.Data(msgBtnRetry, btnFinishRetry.Unique)))
	return markup
}

func parseAnswerData(data string) (questionIndex, option int, err error) {
	parts := strings.Split(strings.TrimSpace(data), "|")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("malformed answer data %q", data)
	}
	questionIndex, err = strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, err
	}
	option, err = strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, err
	}
	return questionIndex, option, nil
}

func resultText(done *quiz.AttemptCompleted) string {
	return fmt.Sprintf("Тест по теме «%s» завершён!\n\nРезультат: %d из %d\nНомер попытки: %d",
		done.TopicTitle, done.Score, done.MaxScore, done.AttemptNumber)
}

func rejectionText(rej *quiz.Rejection) string {
	switch rej.Reason {
	case quiz.RejectNotEnoughQuestions:
		return fmt.Sprintf("В теме «%s» пока недостаточно вопросов: %d из %d необходимых. Загляните позже.",
			rej.TopicTitle, rej.Available, rej.Needed)
	case quiz.RejectLimitExhausted:
		return fmt.Sprintf("Лимит попыток по теме «%s» исчерпан: %d из %d. Результаты: /stats",
			rej.TopicTitle, rej.Limit, rej.Limit)
	default:
		return "Эта тема сейчас недоступна. Список открытых тем: /topics"
	}
}

func attemptsText(limit *int) string {
	if limit == nil {
		return "попыток: без ограничений"
	}
	return fmt.Sprintf("попыток: %d", *limit)
}
