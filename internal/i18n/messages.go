package i18n

var messages = map[string]map[string]string{
	LocaleRU: {
		"error.bad_request":              "Некорректный запрос",
		"error.unauthorized":             "Требуется авторизация",
		"error.forbidden":                "Доступ запрещён",
		"error.not_found":                "Не найдено",
		"error.internal":                 "Внутренняя ошибка сервера",
		"error.too_many_requests":        "Слишком много запросов, попробуйте позже",
		"error.order_not_found":          "Заказ не найден",
		"error.order_canceled":           "Заказ отменён",
		"error.stock_changed":            "Остаток изменился, обновите страницу",
		"error.delivery_not_found":       "Способ доставки не найден",
		"error.payment_category_missing": "Способ оплаты не найден",
		"error.item_not_found":           "Товар не найден",
		"error.category_not_found":       "Категория не найдена",
		"error.discount_not_found":       "Скидка не найдена",
		"error.user_not_found":           "Пользователь не найден",
		"error.not_enough_goods":         "Недостаточно товара",
		"error.invalid_account":          "Неверный номер счёта",
		"error.invalid_email":            "Некорректный email",
		"error.password_min_length":      "Пароль должен содержать не менее %d символов",
		"error.password_require_number":  "Пароль должен содержать цифру",
		"error.invalid_credentials":      "Неверный email или пароль",
		"error.email_taken":              "Email уже зарегистрирован",
		"error.user_disabled":            "Аккаунт отключён",
		"error.user_id_invalid":          "Некорректный идентификатор пользователя",
		"error.session_missing":          "Сессия не найдена",
		"error.auth_header_missing":      "Отсутствует заголовок авторизации",
		"error.auth_header_invalid":      "Некорректный заголовок авторизации",
		"error.token_invalid":            "Недействительный токен",
		"error.jwt_secret_missing":       "Секрет JWT не настроен",
		"error.rate_limit_unavailable":   "Ограничение запросов временно недоступно",
		"error.rate_limited":             "Слишком много запросов, повторите через %d с",
		"error.login_too_many":           "Слишком много попыток входа, повторите через %d с",
		"error.payment_too_many":         "Слишком много попыток оплаты, повторите через %d с",
		"payment.declined":               "Платёж отклонён",
		"payment.passed":                 "Оплата прошла успешно",
		"payment.settled":                "Заказ уже оплачен",
	},
	LocaleEN: {
		"error.bad_request":              "Bad request",
		"error.unauthorized":             "Authentication required",
		"error.forbidden":                "Access denied",
		"error.not_found":                "Not found",
		"error.internal":                 "Internal server error",
		"error.too_many_requests":        "Too many requests, try again later",
		"error.order_not_found":          "Order not found",
		"error.order_canceled":           "Order canceled",
		"error.stock_changed":            "Stock changed, reload and retry",
		"error.delivery_not_found":       "Delivery option not found",
		"error.payment_category_missing": "Payment option not found",
		"error.item_not_found":           "Item not found",
		"error.category_not_found":       "Category not found",
		"error.discount_not_found":       "Discount not found",
		"error.user_not_found":           "User not found",
		"error.not_enough_goods":         "Not enough goods",
		"error.invalid_account":          "Invalid account number",
		"error.invalid_email":            "Invalid email",
		"error.password_min_length":      "Password must be at least %d characters",
		"error.password_require_number":  "Password must contain a digit",
		"error.invalid_credentials":      "Invalid email or password",
		"error.email_taken":              "Email already registered",
		"error.user_disabled":            "Account disabled",
		"error.user_id_invalid":          "Invalid user id",
		"error.session_missing":          "Session not found",
		"error.auth_header_missing":      "Authorization header missing",
		"error.auth_header_invalid":      "Invalid authorization header",
		"error.token_invalid":            "Invalid token",
		"error.jwt_secret_missing":       "JWT secret is not configured",
		"error.rate_limit_unavailable":   "Rate limiter unavailable",
		"error.rate_limited":             "Too many requests, retry in %d s",
		"error.login_too_many":           "Too many login attempts, retry in %d s",
		"error.payment_too_many":         "Too many payment attempts, retry in %d s",
		"payment.declined":               "Payment declined",
		"payment.passed":                 "Payment passed",
		"payment.settled":                "Order already paid",
	},
}
