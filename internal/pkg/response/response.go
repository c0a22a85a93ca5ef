package response

import "github.com/gin-gonic/gin"

// Success writes {"success": true, ...fields}.
func Success(c *gin.Context, statusCode int, fields gin.H) {
	body := gin.H{"success": true}
	for k, v := range fields {
		body[k] = v
	}
	c.JSON(statusCode, body)
}

// Error writes {"success": false, "message": message}.
func Error(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, gin.H{
		"success": false,
		"message": message,
	})
}

func ErrorWithDetails(c *gin.Context, statusCode int, message string, details any) {
	c.JSON(statusCode, gin.H{
		"success": false,
		"message": message,
		"details": details,
	})
}

func Abort(c *gin.Context, statusCode int, message string) {
	Error(c, statusCode, message)
	c.Abort()
}
