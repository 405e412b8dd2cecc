// Package mail renders notification message bodies. Rendering is pure: no
// store, network, or clock access, so templates are testable in isolation.
package mail

import "fmt"

// VerificationSubject is the fixed subject line for verification emails.
const VerificationSubject = "Verification Email From MBuddy"

// VerificationBody renders the HTML body carrying a verification code.
func VerificationBody(code string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
	<meta charset="UTF-8">
	<title>OTP Verification Email</title>
	<style>
		body { background-color: #ffffff; font-family: Arial, sans-serif; font-size: 16px; line-height: 1.4; color: #333333; margin: 0; padding: 0; }
		.container { max-width: 600px; margin: 0 auto; padding: 20px; text-align: center; }
		.message { font-size: 18px; font-weight: bold; margin-bottom: 20px; }
		.body { font-size: 16px; margin-bottom: 20px; }
		.highlight { font-weight: bold; font-size: 24px; letter-spacing: 4px; }
		.support { font-size: 14px; color: #999999; margin-top: 20px; }
	</style>
</head>
<body>
	<div class="container">
		<div class="message">OTP Verification Email</div>
		<div class="body">
			<p>Dear User,</p>
			<p>Thank you for registering with MBuddy. To complete your registration, please use the following OTP to verify your account:</p>
			<p class="highlight">%s</p>
			<p>This OTP is valid for 10 minutes. If you did not request this verification, please disregard this email.</p>
		</div>
		<div class="support">If you have any questions or need assistance, please reach out to us at info@mbuddy.app.</div>
	</div>
</body>
</html>`, code)
}
