// Package content 提供静态的"类别 → 惩罚元数据"查找表。
//
// 表内容为纯数据，无任何行为；类别键为印地语词条，
// 与前端选择器的取值保持一致。
package content

import "math/rand"

// Category 描述一个诉状类别及其对应的惩罚元数据。
type Category struct {
	Key         string   `json:"key"`         // 类别键
	Name        string   `json:"name"`        // 展示名称
	Description string   `json:"description"` // 类别描述
	Mechanics   string   `json:"mechanics"`   // 惩罚机制描述
	Punishments []string `json:"punishments"` // 候选惩罚文本列表
	Duration    string   `json:"duration"`    // 惩罚持续时间描述
	Severity    int      `json:"severity"`    // 严重等级 1-10
}

// DefaultKey 未指定或未知类别时使用的兜底键（严重等级最高的类别）。
const DefaultKey = "अधर्म"

var categories = map[string]Category{
	"क्रोध": {
		Key:         "क्रोध",
		Name:        "क्रोध - क्रूरता का दंड",
		Description: "जो क्रोध से वश में न रह सके, उन्हें कठोर दंड दिया जाता है।",
		Mechanics:   "आत्मा को तपते लोहे से बार-बार दाग लगाया जाता है। हर बार जल जाता है, हर बार दोबारा होता है। क्रोध की हर लहर के साथ तीव्र जलन का अनुभव।",
		Punishments: []string{
			"तम्सराज नरक में: भीषण आग से शरीर सडा दिया जाएगा",
			"शरीर पर तपते लोहे की छड़ें: हजार गुना पीड़ा का अनुभव",
		},
		Duration: "जब तक क्रोध का कर्ज़ा चुकाया न जाए",
		Severity: 9,
	},
	"लोभ": {
		Key:         "लोभ",
		Name:        "लोभ - लालच का दंड",
		Description: "जो धन के लालच में अधर्म करते हैं, उनका लोभ ही उनकी सजा बन जाती है।",
		Mechanics:   "आत्मा को सोने-चाँदी की खान में डाला जाता है जहाँ हर वस्तु पहुँच से परे है। जितना चाहो उतना दूर। भूख और प्यास सदा बनी रहती है।",
		Punishments: []string{
			"तरलौह नरक: पिघली हुई धातु निगलनी होगी सदा",
			"दरिद्रता का चक्र: हमेशा भूखे-नंगे रहना पड़ेगा",
		},
		Duration: "हजार जन्म तक दरिद्रता भोगनी पड़ेगी",
		Severity: 8,
	},
	"काम": {
		Key:         "काम",
		Name:        "काम - वासना का दंड",
		Description: "जो काम-वासना में पड़कर अपने कर्तव्य भूलते हैं, उन्हें अग्नि में भस्म किया जाता है।",
		Mechanics:   "शरीर को तीव्र अग्नि में रखा जाता है जो हड्डियों को जला देती है। हर चिंगारी अन्य जन्मों की वासना की याद दिलाती है।",
		Punishments: []string{
			"वज नरक में भस्म होना: शरीर पर तीक्ष्ण अग्नि की मार",
			"काम की भीषण पीड़ा: शरीर के हर अंग में दर्द",
		},
		Duration: "आजीवन काम-पीड़ा भुगतनी होगी",
		Severity: 8,
	},
	"अहंकार": {
		Key:         "अहंकार",
		Name:        "अहंकार - घमंड का दंड",
		Description: "अहंकारी जन को समाज से बहिष्कृत कर दिया जाता है और कीड़ों के रूप में जन्म लेना पड़ता है।",
		Mechanics:   "आत्मा को कीड़ों के रूप में सड़ती चीजों में पैदा किया जाता है। सब से बिछुड़ना पड़ता है, सब से अपमान सहना पड़ता है।",
		Punishments: []string{
			"विजु नरक में: कीड़े बनकर सड़ना पड़ेगा",
			"अपमान और तिरस्कार: समाज से हमेशा निष्कासन",
		},
		Duration: "कई जन्मों तक नीच जीव के रूप में जन्म",
		Severity: 7,
	},
	"महज": {
		Key:         "महज",
		Name:        "महज - ईर्ष्या का दंड",
		Description: "ईर्ष्या की आग में जलने वाले को दूसरों की खुशी देखनी पड़ती है पर उसे पाना असंभव होता है।",
		Mechanics:   "आत्मा को ऐसे स्थान पर रखा जाता है जहाँ सब सुखी हैं लेकिन वह अकेला दुःख में है। हर पल दूसरों की खुशी की तड़प।",
		Punishments: []string{
			"कन्थर नरक में: दूसरों की खुशी देखते रहना पर पीड़ा सहना",
			"वेदना का सफर: हमेशा असंतुष्ट रहना होगा",
		},
		Duration: "जब तक मन शुद्ध न हो जाए",
		Severity: 7,
	},
	"आलस्य": {
		Key:         "आलस्य",
		Name:        "आलस्य - सुस्ती का दंड",
		Description: "आलसी को अंधकार में रखा जाता है जहाँ कोई काम नहीं कर सकता लेकिन काम ही काम है।",
		Mechanics:   "गहरे अंधकार में कैद, कोई प्रकाश नहीं। हर दिन एक ही काम दोहराना पड़ता है जो कभी खत्म नहीं होता। शरीर कमजोर हो जाता है।",
		Punishments: []string{
			"अंधकार नरक में: निरंतर अंधेरे में भटकना पड़ेगा",
			"शक्तिहीनता: कोई काम करने की क्षमता न होगी",
		},
		Duration: "जब तक प्रयास न किया जाए",
		Severity: 6,
	},
	"छल": {
		Key:         "छल",
		Name:        "छल - धोखे का दंड",
		Description: "जो धोखे से जीवन बिताते हैं, उन्हें हर पल धोखा खाना पड़ता है।",
		Mechanics:   "सब कुछ झूठा दिखता है आत्मा को। जिसे विश्वास करो वह धोखा दे दे। हर रिश्ता टूट जाए।",
		Punishments: []string{
			"निकुम्भिल नरक: हर समय धोखा खाना और पछताना",
			"विश्वास टूटना: कोई भी आपको विश्वास न करेगा",
		},
		Duration: "जब तक सच न बोलने का संकल्प न ले",
		Severity: 8,
	},
	"अधर्म": {
		Key:         "अधर्म",
		Name:        "अधर्म - सर्वोच्च पाप का दंड",
		Description: "अधर्म करने वाले को सभी नरकों की सजा एक साथ भोगनी पड़ती है। यह सबसे कठोर दंड है।",
		Mechanics:   "महारौरव नरक में आत्मा को तमाम यंत्रणाओं से गुजरना पड़ता है। यमदूत निरंतर पीटते हैं। अंत नहीं आता। सभी पाप एक साथ दिखते और महसूस होते हैं।",
		Punishments: []string{
			"महारौरव नरक में: यमदूत द्वारा अनंत प्रताड़ना की जाएगी",
			"सभी नरकों का संचय: सभी दंड एक साथ भुगतने पड़ेंगे",
		},
		Duration: "कल्पों तक सजा भुगतनी होगी",
		Severity: 10,
	},
}

// Get 返回指定键对应的类别。
func Get(key string) (Category, bool) {
	c, ok := categories[key]
	return c, ok
}

// Lookup 返回指定键对应的类别；键为空或未知时返回兜底类别。
func Lookup(key string) Category {
	if c, ok := categories[key]; ok {
		return c
	}
	return categories[DefaultKey]
}

// Default 返回兜底类别（严重等级最高）。
func Default() Category {
	return categories[DefaultKey]
}

// Keys 返回所有类别键。
func Keys() []string {
	keys := make([]string, 0, len(categories))
	for k := range categories {
		keys = append(keys, k)
	}
	return keys
}

// RandomPunishment 从类别的候选列表中等概率选取一条惩罚文本。
func (c Category) RandomPunishment() string {
	if len(c.Punishments) == 0 {
		return ""
	}
	return c.Punishments[rand.Intn(len(c.Punishments))]
}
