package types

const (
	LANGUAGE_EN_KEY = "en"
	LANGUAGE_CN_KEY = "zh-CN"
)

const (
	DEFAULT_APPID = "workbench"
)
