package docx_tools

import "fmt"

// Language selects the language of tool and parameter descriptions.
type Language string

const (
	LanguageZh Language = "zh"
	LanguageEn Language = "en"
)

type descriptions struct {
	search       string
	importDoc    string
	searchData   string
	searchKey    string
	count        string
	offset       string
	ownerIDs     string
	chatIDs      string
	docsTypes    string
	searchUseUAT string
	importData   string
	markdown     string
	fileName     string
	importUseUAT string
}

var descriptionsByLanguage = map[Language]descriptions{
	LanguageZh: {
		search:       "[飞书/Lark] - 云文档-文档 - 搜索文档 - 搜索云文档，只支持user_access_token",
		importDoc:    "[飞书/Lark] - 云文档-文档 - 导入文档 - 导入云文档，最大20MB",
		searchData:   "请求体",
		searchKey:    "搜索关键词",
		count:        "指定搜索返回的文件数量。取值范围为 [0,50]。",
		offset:       "指定搜索的偏移量，该参数最小为 0，即不偏移。该参数的值与返回的文件数量之和不得大于或等于 200（即 offset + count < 200）。",
		ownerIDs:     "文件所有者的 Open ID",
		chatIDs:      "文件所在群的 ID",
		docsTypes:    "文件类型，支持以下枚举：doc：旧版文档;sheet：电子表格;slides：幻灯片;bitable：多维表格;mindnote：思维笔记;file：文件",
		searchUseUAT: "是否使用用户身份请求，false则使用应用身份请求",
		importData:   "请求体",
		markdown:     "markdown文件内容",
		fileName:     "文件名",
		importUseUAT: "使用用户身份请求，否则为应用身份",
	},
	LanguageEn: {
		search:       "[Feishu/Lark] - Docs - Document - Search documents - Search cloud documents, only supports user_access_token",
		importDoc:    "[Feishu/Lark] - Docs - Document - Import document - Import a cloud document, up to 20MB",
		searchData:   "Request body",
		searchKey:    "Search keyword",
		count:        "Number of files to return. Range [0,50].",
		offset:       "Search offset, minimum 0 (no offset). offset + count must be less than 200.",
		ownerIDs:     "Open IDs of the file owners",
		chatIDs:      "IDs of the chats the files belong to",
		docsTypes:    "File types, one of: doc (legacy document), sheet (spreadsheet), slides (slides), bitable (base), mindnote (mind note), file (file)",
		searchUseUAT: "Whether to request as the user; false requests as the app",
		importData:   "Request body",
		markdown:     "Markdown file content",
		fileName:     "File name",
		importUseUAT: "Request as the user, otherwise as the app",
	},
}

// ParseLanguage accepts "zh", "en" or "" (zh).
func ParseLanguage(s string) (Language, error) {
	if s == "" {
		return LanguageZh, nil
	}
	lang := Language(s)
	if _, ok := descriptionsByLanguage[lang]; !ok {
		return "", fmt.Errorf("unsupported language %q, must be 'zh' or 'en'", s)
	}
	return lang, nil
}

func descriptionsFor(lang Language) descriptions {
	if d, ok := descriptionsByLanguage[lang]; ok {
		return d
	}
	return descriptionsByLanguage[LanguageZh]
}
