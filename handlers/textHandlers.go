package handlers

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/telebot.v3"

	"github.com/m-ce-m1/html-bot/models"
	"github.com/m-ce-m1/html-bot/parsers"
)

// handleText routes free-form messages by the sender's pending flow.
func (b *Bot) handleText(c telebot.Context) error {
	userID := c.Sender().ID
	p, ok := b.getPending(userID)
	if !ok {
		return c.Send(msgUnknownInput)
	}
	switch p.kind {
	case pendingName:
		return b.finishRegistration(c)
	case pendingAsk:
		return b.recordAsk(c)
	case pendingAttempts:
		return b.setAttemptsFromText(c, p)
	case pendingMaterial:
		if p.materialType == models.MaterialFile {
			return c.Send(msgSendMaterialFile)
		}
		return b.addTextMaterial(c, p)
	case pendingUpload:
		return c.Send(msgExpectedFile)
	}
	return nil
}

func (b *Bot) handleDocument(c telebot.Context) error {
	userID := c.Sender().ID
	p, ok := b.getPending(userID)
	if !ok {
		return nil
	}
	switch p.kind {
	case pendingUpload:
		return b.saveQuestionFile(c, p)
	case pendingMaterial:
		if p.materialType == models.MaterialLink || p.materialType == models.MaterialText {
			return c.Send(msgExpectedText)
		}
		return b.saveMaterialFile(c, p)
	}
	return nil
}

func (b *Bot) finishRegistration(c telebot.Context) error {
	userID := c.Sender().ID
	name := strings.Join(strings.Fields(c.Text()), " ")
	if len(strings.Fields(name)) < 2 {
		return c.Send(msgNameTooShort)
	}

	role := models.RoleStudent
	if b.Settings.IsAdmin(userID) {
		role = models.RoleAdmin
	}
	err := b.Users.Upsert(context.Background(), models.User{
		ID:        userID,
		FullName:  name,
		Role:      role,
		CreatedAt: time.Now(),
	})
	if err != nil {
		return b.fail(c, err)
	}
	b.clearPending(userID)
	b.Log.Info("user registered", "user_id", userID, "role", role)
	return c.Send(fmt.Sprintf(msgRegistered, name), b.mainMenu(userID))
}

// recordAsk stores a student question and relays it to every admin. The
// relay is best effort, the stored copy is what /questions works from.
func (b *Bot) recordAsk(c telebot.Context) error {
	ctx := context.Background()
	userID := c.Sender().ID
	text := strings.TrimSpace(c.Text())
	if text == "" {
		return c.Send(msgEmptyAsk)
	}

	id, err := b.Messages.Record(ctx, userID, text)
	if err != nil {
		return b.fail(c, err)
	}
	b.clearPending(userID)

	name := fmt.Sprintf("id %d", userID)
	if u, err := b.Users.Get(ctx, userID); err == nil && u != nil {
		name = u.FullName
	}
	for _, adminID := range b.Settings.AdminIDs {
		_, err := b.tb.Send(&telebot.User{ID: adminID}, fmt.Sprintf(msgStudentQuestion, id, name, text, id))
		if err != nil {
			b.Log.Warn("question relay failed", "admin_id", adminID, "message_id", id, "error", err)
		}
	}
	return c.Send(msgQuestionSent)
}

func (b *Bot) addTextMaterial(c telebot.Context, p pendingInput) error {
	title, content, detected, err := parseMaterialText(c.Text())
	if err != nil {
		return c.Send(msgMaterialFormat)
	}
	mtype := detected
	switch p.materialType {
	case models.MaterialLink:
		if detected != models.MaterialLink {
			return c.Send(msgLinkNeedsURL)
		}
	case models.MaterialText:
		mtype = models.MaterialText
	}

	id, err := b.Materials.Add(context.Background(), models.Material{
		TopicID: p.topicID,
		Type:    mtype,
		Content: content,
		Title:   title,
	})
	if err != nil {
		return b.fail(c, err)
	}
	b.clearPending(c.Sender().ID)
	b.Log.Info("material added", "material_id", id, "type", mtype)
	return c.Send(fmt.Sprintf(msgMaterialAdded, id))
}

// saveQuestionFile parses an uploaded question file into the pending
// topic. On a parse error the flow stays pending so the admin can fix the
// file and resend it.
func (b *Bot) saveQuestionFile(c telebot.Context, p pendingInput) error {
	ctx := context.Background()
	doc := c.Message().Document

	rc, err := b.tb.File(&doc.File)
	if err != nil {
		return b.fail(c, err)
	}
	defer rc.Close()

	payloads, err := parsers.ParseQuestions(doc.FileName, rc)
	if err != nil {
		return c.Send(fmt.Sprintf(msgParseFailed, err))
	}

	added, err := b.Topics.InsertQuestions(ctx, *p.topicID, payloads)
	if err != nil {
		return b.fail(c, err)
	}
	b.clearPending(c.Sender().ID)

	total, err := b.Topics.CountQuestions(ctx, *p.topicID)
	if err != nil {
		total = added
	}
	b.Log.Info("questions uploaded", "topic_id", *p.topicID, "added", added, "total", total)
	return c.Send(fmt.Sprintf(msgQuestionsSaved, added, total))
}

func (b *Bot) saveMaterialFile(c telebot.Context, p pendingInput) error {
	ctx := context.Background()
	doc := c.Message().Document

	rc, err := b.tb.File(&doc.File)
	if err != nil {
		return b.fail(c, err)
	}
	defer rc.Close()

	key := fmt.Sprintf("materials/%s%s", uuid.NewString(), strings.ToLower(filepath.Ext(doc.FileName)))
	if _, err := b.Files.Put(ctx, key, rc); err != nil {
		return b.fail(c, err)
	}

	id, err := b.Materials.Add(ctx, models.Material{
		TopicID: p.topicID,
		Type:    models.MaterialFile,
		Content: key,
		Title:   doc.FileName,
	})
	if err != nil {
		_ = b.Files.Delete(ctx, key)
		return b.fail(c, err)
	}
	b.clearPending(c.Sender().ID)
	return c.Send(fmt.Sprintf(msgMaterialAdded, id))
}

// parseMaterialText splits the "Title::: content" shorthand admins use for
// text and link materials. Content starting with a URL scheme becomes a
// link material.
func parseMaterialText(text string) (title, content, mtype string, err error) {
	parts := strings.SplitN(text, ":::", 2)
	if len(parts) != 2 {
		return "", "", "", fmt.Errorf("expected two parts separated by :::")
	}
	title = strings.TrimSpace(parts[0])
	content = strings.TrimSpace(parts[1])
	if title == "" || content == "" {
		return "", "", "", fmt.Errorf("empty title or content")
	}
	mtype = models.MaterialText
	if strings.HasPrefix(content, "http://") || strings.HasPrefix(content, "https://") {
		mtype = models.MaterialLink
	}
	return title, content, mtype, nil
}
