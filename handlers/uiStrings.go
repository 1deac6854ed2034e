package handlers

// User-facing texts. The audience of the bot is russian-speaking students,
// so the UI stays in russian while logs and identifiers stay in english.
const (
	msgAskName       = "Здравствуйте! Я помогу вам готовиться к занятиям по HTML и CSS.\n\nПредставьтесь, пожалуйста: напишите имя и фамилию."
	msgNameTooShort  = "Пожалуйста, напишите имя и фамилию полностью, например: Иван Петров."
	msgRegistered    = "Приятно познакомиться, %s!\n\nТеперь вам доступны темы, тесты и материалы. Начните с команды /topics или нажмите кнопку меню."
	msgWelcomeBack   = "С возвращением, %s! Выберите команду в меню."
	msgNotRegistered = "Сначала нужно представиться. Отправьте /start."
	msgAdminsOnly    = "Эта команда доступна только преподавателю."
	msgInternalError = "Что-то пошло не так. Попробуйте ещё раз чуть позже."
	msgCancelled     = "Хорошо, действие отменено."
	msgUnknownInput  = "Я не понял сообщение. Список команд: /help"

	msgHelp = "Доступные команды:\n" +
		"/topics — список открытых тем\n" +
		"/test — пройти тест по теме\n" +
		"/stats — ваши результаты\n" +
		"/materials — учебные материалы\n" +
		"/ask — задать вопрос преподавателю\n" +
		"/cancel — отменить текущее действие"

	msgAdminHelp = "Команды преподавателя:\n" +
		"/add_topic <название> — создать тему (создаётся скрытой)\n" +
		"/all_topics — все темы, включая скрытые\n" +
		"/toggle_topic — открыть или скрыть тему\n" +
		"/set_attempts — лимит попыток по теме\n" +
		"/upload_test — загрузить файл с вопросами (.csv или .txt)\n" +
		"/questions — вопросы студентов без ответа\n" +
		"/reply <номер> <текст> — ответить студенту\n" +
		"/add_material — добавить материал\n" +
		"/remove_material — удалить материал\n" +
		"/all_stats — сводка по всем студентам\n" +
		"/export_stats — выгрузка результатов в Excel\n" +
		"/broadcast <текст> — сообщение всем студентам\n" +
		"/backup_db — резервная копия базы (sqlite)"

	msgHelpAdminHint = "Команды преподавателя: /admin"

	msgNoTopics      = "Открытых тем пока нет. Загляните позже."
	msgTopicsHeader  = "Доступные темы:\n"
	msgChooseTopic   = "По какой теме хотите пройти тест?"
	msgNoActiveTest  = "Сейчас у вас нет активного теста. Начать новый: /test"
	msgAlreadyDone   = "Этот вопрос уже засчитан."
	msgTestCancelled = "Тест отменён. Результат не сохранён."
	msgSaveFailed    = "Тест пройден, но результат пока не сохранился. Нажмите кнопку, чтобы повторить сохранение."
	msgStillFailing  = "Пока не получается сохранить. Попробуйте ещё раз."
	msgBtnRetry      = "Сохранить результат"
	msgBtnCancelTest = "Отменить тест"

	msgNoAttempts   = "Вы ещё не проходили тесты. Начните с команды /test."
	msgStatsHeader  = "Ваши последние результаты:\n"
	msgAskPrompt    = "Напишите свой вопрос одним сообщением, я передам его преподавателю."
	msgEmptyAsk     = "Вопрос не может быть пустым. Напишите текст или отправьте /cancel."
	msgQuestionSent = "Вопрос передан преподавателю. Ответ придёт сюда же."

	msgMaterialsWhich = "Материалы по какой теме вас интересуют?"
	msgGeneralButton  = "Общие материалы"
	msgNoMaterials    = "Материалов по этой теме пока нет."
	msgMaterialsCome  = "Отправляю материалы."
	msgOpenLink       = "Открыть ссылку"

	msgAddTopicUsage   = "Использование: /add_topic <название темы>"
	msgTopicExists     = "Тема с таким названием уже есть."
	msgTopicCreated    = "Тема «%s» создана (id %d). Она скрыта от студентов, открыть: /toggle_topic %d"
	msgTopicNotFound   = "Тема с таким id не найдена. Список: /all_topics"
	msgNoTopicsYet     = "Тем пока нет. Создать: /add_topic <название>"
	msgAllTopicsHeader = "Все темы:\n"
	msgPickTopicToggle = "Какую тему открыть или скрыть?"
	msgTopicOpened     = "Тема «%s» открыта для студентов."
	msgTopicHidden     = "Тема «%s» скрыта от студентов."
	msgFewQuestions    = "\nВнимание: в теме %d вопросов, для теста нужно %d."

	msgPickTopicAttempts = "Для какой темы изменить лимит попыток?"
	msgEnterAttempts     = "Тема «%s», сейчас попыток: %s. Отправьте новое число или unlimited. Отменить: /cancel"
	msgBadAttempts       = "Нужно положительное число или unlimited. Попробуйте ещё раз или отправьте /cancel."
	msgSetAttemptsUse    = "Использование: /set_attempts <id темы> <число|unlimited>"
	msgLimitSet          = "Лимит попыток для темы «%s»: %s."

	msgPickTopicUpload = "В какую тему загрузить вопросы?"
	msgUploadUsage     = "Использование: /upload_test <id темы>"
	msgSendFile        = "Пришлите файл с вопросами для темы «%s» (.csv или .txt, столбцы через точку с запятой: вопрос;вариант1;вариант2;вариант3;вариант4;номер правильного)."
	msgExpectedFile    = "Жду файл документом. Отменить: /cancel"
	msgParseFailed     = "Не удалось разобрать файл: %v\n\nИсправьте и пришлите ещё раз или отправьте /cancel."
	msgQuestionsSaved  = "Готово, добавлено вопросов: %d. Всего в теме: %d."

	msgNoStudentQuestions = "Вопросов без ответа нет."
	msgQuestionsHeader    = "Вопросы студентов:\n"
	msgReplyHint          = "\nОтветить: /reply <номер> <текст>"
	msgReplyUsage         = "Использование: /reply <номер вопроса> <текст ответа>"
	msgMessageNotFound    = "Вопрос с таким номером не найден. Список: /questions"
	msgReplySent          = "Ответ отправлен студенту."
	msgTeacherReply       = "Преподаватель ответил на ваш вопрос:\n\n«%s»\n\n%s"
	msgStudentQuestion    = "Вопрос №%d от %s:\n\n%s\n\nОтветить: /reply %d <текст>"

	msgPickTopicMaterial = "К какой теме относится материал?"
	msgPickMaterialType  = "Что это будет за материал?"
	msgBtnMatLink        = "Ссылка"
	msgBtnMatFile        = "Файл"
	msgBtnMatText        = "Текст"
	msgSendMaterialText  = "Отправьте материал одним сообщением в формате «Название::: текст». Отменить: /cancel"
	msgSendMaterialLink  = "Отправьте ссылку в формате «Название::: https://...». Отменить: /cancel"
	msgSendMaterialFile  = "Пришлите файл документом. Отменить: /cancel"
	msgExpectedText      = "Жду текстовое сообщение в формате «Название::: ...». Отменить: /cancel"
	msgLinkNeedsURL      = "Ссылка должна начинаться с http:// или https://. Попробуйте ещё раз."
	msgMaterialFormat    = "Нужен формат «Название::: текст или ссылка». Попробуйте ещё раз или отправьте /cancel."
	msgMaterialAdded     = "Материал добавлен (id %d)."
	msgMaterialGone      = "Материал с таким id не найден."
	msgMaterialRemoved   = "Материал «%s» удалён."
	msgPickTopicRemove   = "Из какой темы удалить материал?"
	msgPickMaterial      = "Какой материал удалить?"
	msgRemoveUsage       = "Использование: /remove_material <id материала>"

	msgPickTopicExport = "По какой теме выгрузить статистику?"
	msgAllTopicsButton = "Все темы"
	msgExporting       = "Готовлю файл со статистикой..."
	msgNoStatsYet      = "Попыток пока нет."

	msgBroadcastUse  = "Использование: /broadcast <текст сообщения>"
	msgBroadcastDone = "Сообщение отправлено: %d из %d студентов."
	msgBackupSqlite  = "Резервная копия доступна только для sqlite."
	msgBackupNoFile  = "Не удалось определить файл базы данных."
)
