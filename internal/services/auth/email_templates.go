package auth

import "fmt"

func welcomeBody(username string) string {
	return fmt.Sprintf(`
		<html>
		<body style='font-family: Arial, sans-serif; line-height: 1.6; color: #333;'>
			<div style='max-width: 600px; margin: 0 auto; padding: 20px;'>
				<div style='background: linear-gradient(135deg, #2596be 0%%, #1d7a9e 100%%); padding: 30px; text-align: center; border-radius: 10px 10px 0 0;'>
					<h1 style='color: white; margin: 0;'>Machine Control System</h1>
				</div>
				<div style='background: #f9f9f9; padding: 30px; border-radius: 0 0 10px 10px;'>
					<h2 style='color: #2596be;'>Welcome aboard</h2>
					<p>Hello %s,</p>
					<p>Your account has been created. You can now sign in to the dashboard to monitor the machine fleet, check tube configurations and follow machine status around the world.</p>
					<p>If you did not create this account, please contact your system administrator immediately.</p>
					<hr style='border: none; border-top: 1px solid #ddd; margin: 30px 0;'>
					<p style='color: #666; font-size: 12px;'>This is an automated message from the Machine Control System. Please do not reply to this email.</p>
				</div>
			</div>
		</body>
		</html>`, username)
}

func passwordResetBody(username, tempPassword string) string {
	return fmt.Sprintf(`
		<html>
		<body style='font-family: Arial, sans-serif; line-height: 1.6; color: #333;'>
			<div style='max-width: 600px; margin: 0 auto; padding: 20px;'>
				<div style='background: linear-gradient(135deg, #2596be 0%%, #1d7a9e 100%%); padding: 30px; text-align: center; border-radius: 10px 10px 0 0;'>
					<h1 style='color: white; margin: 0;'>Machine Control System</h1>
				</div>
				<div style='background: #f9f9f9; padding: 30px; border-radius: 0 0 10px 10px;'>
					<h2 style='color: #2596be;'>Password Reset</h2>
					<p>Hello %s,</p>
					<p>You have requested to reset your password. Your temporary password is:</p>
					<div style='background: white; padding: 15px; border-left: 4px solid #2596be; margin: 20px 0; font-family: monospace; font-size: 18px; font-weight: bold;'>
						%s
					</div>
					<p><strong>Important:</strong> Please log in with this temporary password and change it immediately in your account settings.</p>
					<p>If you didn't request this password reset, please contact your system administrator immediately.</p>
					<hr style='border: none; border-top: 1px solid #ddd; margin: 30px 0;'>
					<p style='color: #666; font-size: 12px;'>This is an automated message from the Machine Control System. Please do not reply to this email.</p>
				</div>
			</div>
		</body>
		</html>`, username, tempPassword)
}
