package handlers

import (
	"strings"
	"testing"

	"gopkg.in/telebot.v3"

	"github.com/m-ce-m1/html-bot/models"
	"github.com/m-ce-m1/html-bot/quiz"
)

func TestParseAnswerData(t *testing.T) {
	idx, opt, err := parseAnswerData("3|2")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if idx != 3 || opt != 2 {
		t.Fatalf("expected 3,2 got %d,%d", idx, opt)
	}

	for _, bad := range []string{"", "3", "a|b", "1|2|3"} {
		if _, _, err := parseAnswerData(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}

func TestParseMaterialText(t *testing.T) {
	title, content, mtype, err := parseMaterialText("Справочник MDN::: https://developer.mozilla.org")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if title != "Справочник MDN" || content != "https://developer.mozilla.org" {
		t.Fatalf("unexpected parts: %q %q", title, content)
	}
	if mtype != models.MaterialLink {
		t.Fatalf("expected link material, got %s", mtype)
	}

	_, _, mtype, err = parseMaterialText("Конспект::: Флексбокс против грида")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if mtype != models.MaterialText {
		t.Fatalf("expected text material, got %s", mtype)
	}

	for _, bad := range []string{"без разделителя", ":::", "Название:::   ", "   ::: текст"} {
		if _, _, _, err := parseMaterialText(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}

func TestParseMaterialTarget(t *testing.T) {
	id, err := parseMaterialTarget("7")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if id == nil || *id != 7 {
		t.Fatalf("expected topic 7, got %v", id)
	}

	id, err = parseMaterialTarget("general")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if id != nil {
		t.Fatalf("general shelf must map to nil, got %d", *id)
	}

	for _, bad := range []string{"", "abc", "7x"} {
		if _, err := parseMaterialTarget(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}

func TestTopicButtons(t *testing.T) {
	topics := []models.Topic{
		{ID: 1, Title: "HTML Basics"},
		{ID: 2, Title: "CSS Selectors"},
	}
	markup := &telebot.ReplyMarkup{}
	rows := topicButtons(markup, "start_test", topics)
	if len(rows) != 2 {
		t.Fatalf("expected one row per topic, got %d", len(rows))
	}
	if rows[0][0].Text != "HTML Basics" || rows[1][0].Text != "CSS Selectors" {
		t.Fatalf("unexpected labels: %q %q", rows[0][0].Text, rows[1][0].Text)
	}
	if rows[1][0].Data != "2" {
		t.Fatalf("expected topic id in callback data, got %q", rows[1][0].Data)
	}
}

func TestMaterialTypeMarkup(t *testing.T) {
	markup := materialTypeMarkup("general")
	if len(markup.InlineKeyboard) != 1 {
		t.Fatalf("expected one row, got %d", len(markup.InlineKeyboard))
	}
	row := markup.InlineKeyboard[0]
	if len(row) != 3 {
		t.Fatalf("expected link, file and text buttons, got %d", len(row))
	}
}

func TestSqliteDBPath(t *testing.T) {
	path, ok := sqliteDBPath("file:htmlbot.db?_busy_timeout=5000")
	if !ok || path != "htmlbot.db" {
		t.Fatalf("unexpected %q %v", path, ok)
	}
	if path, ok = sqliteDBPath("htmlbot.db"); !ok || path != "htmlbot.db" {
		t.Fatalf("unexpected %q %v", path, ok)
	}
	for _, dsn := range []string{"file::memory:", "file:test?mode=memory&cache=shared", ""} {
		if _, ok := sqliteDBPath(dsn); ok {
			t.Fatalf("expected no file for %q", dsn)
		}
	}
}

func presentedQuestion() *quiz.QuestionPresented {
	return &quiz.QuestionPresented{
		Index:    2,
		Position: 3,
		Total:    10,
		Prompt:   "Какой тег задаёт абзац?",
		Options: [4]quiz.Option{
			{Label: "A", Index: 1, Text: "<p>"},
			{Label: "B", Index: 2, Text: "<div>"},
			{Label: "C", Index: 3, Text: "<span>"},
			{Label: "D", Index: 4, Text: "<a>"},
		},
	}
}

func TestQuestionMessage(t *testing.T) {
	text, markup := questionMessage(presentedQuestion())

	if !strings.Contains(text, "Вопрос 3 из 10") {
		t.Fatalf("missing position line: %q", text)
	}
	if !strings.Contains(text, "Какой тег задаёт абзац?") {
		t.Fatalf("missing prompt: %q", text)
	}
	for _, line := range []string{"A. <p>", "B. <div>", "C. <span>", "D. <a>"} {
		if !strings.Contains(text, line) {
			t.Fatalf("missing option line %q in %q", line, text)
		}
	}

	if len(markup.InlineKeyboard) != 2 {
		t.Fatalf("expected answer row and cancel row, got %d rows", len(markup.InlineKeyboard))
	}
	answers := markup.InlineKeyboard[0]
	if len(answers) != 4 {
		t.Fatalf("expected 4 answer buttons, got %d", len(answers))
	}
	for i, want := range []string{"A", "B", "C", "D"} {
		if answers[i].Text != want {
			t.Fatalf("button %d labeled %q, want %q", i, answers[i].Text, want)
		}
	}
}

func TestRejectionText(t *testing.T) {
	short := rejectionText(&quiz.Rejection{
		Reason:     quiz.RejectNotEnoughQuestions,
		TopicTitle: "HTML Basics",
		Needed:     10,
		Available:  7,
	})
	if !strings.Contains(short, "HTML Basics") || !strings.Contains(short, "7") || !strings.Contains(short, "10") {
		t.Fatalf("unexpected short-pool text: %q", short)
	}

	exhausted := rejectionText(&quiz.Rejection{
		Reason:     quiz.RejectLimitExhausted,
		TopicTitle: "CSS",
		Limit:      2,
	})
	if !strings.Contains(exhausted, "CSS") || !strings.Contains(exhausted, "2") {
		t.Fatalf("unexpected limit text: %q", exhausted)
	}

	unavailable := rejectionText(&quiz.Rejection{Reason: quiz.RejectTopicUnavailable})
	if !strings.Contains(unavailable, "недоступна") {
		t.Fatalf("unexpected unavailable text: %q", unavailable)
	}
}

func TestResultText(t *testing.T) {
	got := resultText(&quiz.AttemptCompleted{TopicTitle: "HTML Basics", Score: 7, MaxScore: 10, AttemptNumber: 2})
	if !strings.Contains(got, "HTML Basics") || !strings.Contains(got, "7 из 10") || !strings.Contains(got, "попытки: 2") {
		t.Fatalf("unexpected result text: %q", got)
	}
}

func TestLimitText(t *testing.T) {
	if got := limitText(nil); got != "без ограничений" {
		t.Fatalf("unexpected: %q", got)
	}
	n := 3
	if got := limitText(&n); got != "3" {
		t.Fatalf("unexpected: %q", got)
	}
}
