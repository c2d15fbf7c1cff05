package notification

var defaultTemplates = map[NoticeType]NoticeTemplate{
	EmailVerifyNotice: {
		Subject: "Verify your email address",
		Text:    "Hi {{.Name}},\n\nPlease verify your email address by visiting:\n{{.Link}}\n",
		Html:    "<p>Hi {{.Name}},</p><p>Please verify your email address by clicking <a href=\"{{.Link}}\">here</a>.</p>",
	},
	PasswordResetNotice: {
		Subject: "Password reset requested",
		Text:    "Hi {{.Name}},\n\nA password reset was requested for your account. The link below is valid for one hour:\n{{.Link}}\n\nIf you did not request this, you can ignore this message.\n",
		Html:    "<p>Hi {{.Name}},</p><p>A password reset was requested for your account. <a href=\"{{.Link}}\">Reset your password</a> (valid for one hour).</p><p>If you did not request this, you can ignore this message.</p>",
	},
	WelcomeNotice: {
		Subject: "Welcome to Campus Works",
		Text:    "Hi {{.Name}},\n\nYour account has been created. Please check your inbox for a verification link.\n",
		Html:    "<p>Hi {{.Name}},</p><p>Your account has been created. Please check your inbox for a verification link.</p>",
	},
	OrderAssignedNotice: {
		Subject: "Order {{.OrderNumber}} assigned",
		Text:    "Hi {{.Name}},\n\nOrder {{.OrderNumber}} has been assigned to you.\n",
		Html:    "<p>Hi {{.Name}},</p><p>Order {{.OrderNumber}} has been assigned to you.</p>",
	},
}
