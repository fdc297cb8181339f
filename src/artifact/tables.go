package artifact

// setPieces lists each set's piece titles in slot order:
// flower, plume, sands, goblet, circlet. Prayers sets only have a circlet.
var setPieces = []struct {
	Set    SetKey
	Pieces [5]string
}{
	{"ArchaicPetra", [5]string{"磐陀裂生之花", "嵯峨群峰之翼", "星罗圭壁之晷", "巉岩琢塑之樽", "不动玄石之相"}},
	{"HeartOfDepth", [5]string{"饰金胸花", "追忆之风", "坚铜罗盘", "沉波之盏", "酒渍船帽"}},
	{"BlizzardStrayer", [5]string{"历经风雪的思念", "摧冰而行的执望", "冰雪故园的终期", "遍结寒霜的傲骨", "破冰踏雪的回音"}},
	{"RetracingBolide", [5]string{"夏祭之花", "夏祭终末", "夏祭之刻", "夏祭水玉", "夏祭之面"}},
	{"NoblesseOblige", [5]string{"宗室之花", "宗室之翎", "宗室时计", "宗室银瓮", "宗室面具"}},
	{"GladiatorsFinale", [5]string{"角斗士的留恋", "角斗士的归宿", "角斗士的希冀", "角斗士的酣醉", "角斗士的凯旋"}},
	{"MaidenBeloved", [5]string{"远方的少女之心", "少女飘摇的思念", "少女苦短的良辰", "少女片刻的闲暇", "少女易逝的芳颜"}},
	{"ViridescentVenerer", [5]string{"野花记忆的绿野", "猎人青翠的箭羽", "翠绿猎人的笃定", "翠绿猎人的容器", "翠绿的猎人之冠"}},
	{"Lavawalker", [5]string{"渡火者的决绝", "渡火者的解脱", "渡火者的煎熬", "渡火者的醒悟", "渡火者的智慧"}},
	{"CrimsonWitchOfFlames", [5]string{"魔女的炎之花", "魔女常燃之羽", "魔女破灭之时", "魔女的心之火", "焦灼的魔女帽"}},
	{"Thundersoother", [5]string{"平雷之心", "平雷之羽", "平雷之刻", "平雷之器", "平雷之冠"}},
	{"ThunderingFury", [5]string{"雷鸟的怜悯", "雷灾的孑遗", "雷霆的时计", "降雷的凶兆", "唤雷的头冠"}},
	{"BloodstainedChivalry", [5]string{"染血的铁之心", "染血的黑之羽", "骑士染血之时", "染血骑士之杯", "染血的铁假面"}},
	{"WanderersTroupe", [5]string{"乐团的晨光", "琴师的箭羽", "终幕的时计", "吟游者之壶", "指挥的礼帽"}},
	{"Scholar", [5]string{"学士的书签", "学士的羽笔", "学士的时钟", "学士的墨杯", "学士的镜片"}},
	{"Gambler", [5]string{"赌徒的胸花", "赌徒的羽饰", "赌徒的怀表", "赌徒的骰盅", "赌徒的耳环"}},
	{"TinyMiracle", [5]string{"奇迹之花", "奇迹之羽", "奇迹之沙", "奇迹之杯", "奇迹耳坠"}},
	{"MartialArtist", [5]string{"武人的红花", "武人的羽饰", "武人的水漏", "武人的酒杯", "武人的头巾"}},
	{"BraveHeart", [5]string{"勇士的勋章", "勇士的期许", "勇士的坚毅", "勇士的壮行", "勇士的冠冕"}},
	{"ResolutionOfSojourner", [5]string{"故人之心", "归乡之羽", "逐光之石", "异国之盏", "感别之冠"}},
	{"DefendersWill", [5]string{"守护之花", "守护徽印", "守护座钟", "守护之皿", "守护束带"}},
	{"Berserker", [5]string{"战狂的蔷薇", "战狂的翎羽", "战狂的时计", "战狂的骨杯", "战狂的鬼面"}},
	{"Instructor", [5]string{"教官的胸花", "教官的羽饰", "教官的怀表", "教官的茶杯", "教官的帽子"}},
	{"TheExile", [5]string{"流放者之花", "流放者之羽", "流放者怀表", "流放者之杯", "流放者头冠"}},
	{"Adventurer", [5]string{"冒险家之花", "冒险家尾羽", "冒险家怀表", "冒险家金杯", "冒险家头带"}},
	{"LuckyDog", [5]string{"幸运儿绿花", "幸运儿鹰羽", "幸运儿沙漏", "幸运儿之杯", "幸运儿银冠"}},
	{"TravelingDoctor", [5]string{"游医的银莲", "游医的枭羽", "游医的怀钟", "游医的药壶", "游医的方巾"}},
	{"PrayersForWisdom", [5]string{"", "", "", "", "祭雷礼冠"}},
	{"PrayersToSpringtime", [5]string{"", "", "", "", "祭冰礼冠"}},
	{"PrayersForIllumination", [5]string{"", "", "", "", "祭火礼冠"}},
	{"PrayersForDestiny", [5]string{"", "", "", "", "祭水礼冠"}},
	{"PaleFlame", [5]string{"无垢之花", "贤医之羽", "停摆之刻", "超越之盏", "嗤笑之面"}},
	{"TenacityOfTheMillelith", [5]string{"勋绩之花", "昭武翎羽", "金铜时晷", "盟誓金爵", "将帅兜鍪"}},
	{"EmblemOfSeveredFate", [5]string{"明威之镡", "切落之羽", "雷云之笼", "绯花之壶", "华饰之兜"}},
	{"ShimenawasReminiscence", [5]string{"羁缠之花", "思忆之矢", "朝露之时", "祈望之心", "无常之面"}},
	{"HuskOfOpulentDreams", [5]string{"荣花之期", "华馆之羽", "众生之谣", "梦醒之瓢", "形骸之笠"}},
	{"OceanHuedClam", [5]string{"海染之花", "渊宫之羽", "离别之贝", "真珠之笼", "海祇之冠"}},
	{"VermillionHereafter", [5]string{"生灵之华", "潜光片羽", "阳辔之遗", "结契之刻", "虺雷之姿"}},
	{"EchoesOfAnOffering", [5]string{"魂香之花", "垂玉之叶", "祝祀之凭", "涌泉之盏", "浮溯之珏"}},
	{"DeepwoodMemories", [5]string{"迷宫的游人", "翠蔓的智者", "贤智的定期", "迷误者之灯", "月桂的宝冠"}},
	{"GildedDreams", [5]string{"梦中的铁花", "裁断的翎羽", "沉金的岁月", "如蜜的终宴", "沙王的投影"}},
	{"FlowerOfParadiseLost", [5]string{"月女的华彩", "谢落的筵席", "凝结的时刻", "守秘的魔瓶", "紫晶的花冠"}},
	{"DesertPavilionChronicle", [5]string{"众王之都的开端", "黄金邦国的结末", "失落迷途的机芯", "迷醉长梦的守护", "流沙贵嗣的遗宝"}},
	{"NymphsDream", [5]string{"旅途中的鲜花", "坏巫师的羽杖", "水仙的时时刻刻", "勇者们的茶会", "恶龙的单片镜"}},
	{"VourukashasGlow", [5]string{"灵光源起之蕊", "琦色灵彩之羽", "久远花落之时", "无边酣乐之筵", "灵光明烁之心"}},
	{"MarechausseeHunter", [5]string{"猎人的胸花", "杰作的序曲", "裁判的时刻", "遗忘的容器", "老兵的容颜"}},
	{"GoldenTroupe", [5]string{"黄金乐曲的变奏", "黄金飞鸟的落羽", "黄金时代的先声", "黄金之夜的喧嚣", "黄金剧团的奖赏"}},
	{"SongOfDaysPast", [5]string{"昔时遗落之誓", "昔时浮想之思", "昔时回映之音", "昔时应许之梦", "昔时传奏之诗"}},
	{"NighttimeWhispersInTheEchoingWoods", [5]string{"无私的妆饰花", "诚恳的蘸水笔", "忠实的砂时计", "慷慨的墨水瓶", "慈爱的淑女帽"}},
	{"FragmentOfHarmonicWhimsy", [5]string{"谐律交响的前奏", "古海玄幽的夜想", "命途轮转的谐谑", "灵露倾洒的狂诗", "异想零落的圆舞"}},
	{"UnfinishedReverie", [5]string{"暗结的明花", "褪光的翠尾", "举业的识刻", "筹谋的共樽", "失冕的宝冠"}},
	{"ScrollOfTheHeroOfCinderCity", [5]string{"驯兽师的护符", "巡山客的信标", "秘术家的金盘", "游学者的爪杯", "魔战士的羽面"}},
	{"ObsidianCodex", [5]string{"异种的期许", "灵髓的根脉", "夜域的迷思", "纷争的前宴", "诸圣的礼冠"}},
	{"LongNightsOath", [5]string{"执灯人的誓言", "夜鸣莺的尾羽", "不死者的哀铃", "未吹响的号角", "被浸染的缨盔"}},
	{"FinaleOfTheDeepGalleries", [5]string{"深廊的回奏之歌", "深廊的漫远之约", "深廊的湮落之刻", "深廊的饫赐之宴", "深廊的遂失之冕"}},
}

// titleAliases maps alternative spellings the game has used to the canonical title.
var titleAliases = map[string]string{
	"星罗圭璧之晷": "星罗圭壁之晷",
	"终末的时计":  "终幕的时计",
}

// characters maps the displayed character name to its GOOD location key.
var characters = map[string]string{
	"迪卢克":   "Diluc",
	"可莉":    "Klee",
	"胡桃":    "HuTao",
	"宵宫":    "Yoimiya",
	"安柏":    "Amber",
	"班尼特":   "Bennett",
	"香菱":    "Xiangling",
	"辛焱":    "Xinyan",
	"烟绯":    "Yanfei",
	"托马":    "Thoma",
	"迪希雅":   "Dehya",
	"林尼":    "Lyney",
	"夏沃蕾":   "Chevreuse",
	"嘉明":    "Gaming",
	"阿蕾奇诺":  "Arlecchino",
	"玛薇卡":   "Mavuika",
	"莫娜":    "Mona",
	"达达利亚":  "Tartaglia",
	"珊瑚宫心海": "SangonomiyaKokomi",
	"神里绫人":  "KamisatoAyato",
	"夜兰":    "Yelan",
	"妮露":    "Nilou",
	"芭芭拉":   "Barbara",
	"行秋":    "Xingqiu",
	"坎蒂丝":   "Candace",
	"芙宁娜":   "Furina",
	"那维莱特":  "Neuvillette",
	"希格雯":   "Sigewinne",
	"玛拉妮":   "Mualani",
	"塔利雅":   "Dahlia",
	"刻晴":    "Keqing",
	"雷电将军":  "RaidenShogun",
	"八重神子":  "YaeMiko",
	"赛诺":    "Cyno",
	"北斗":    "Beidou",
	"丽莎":    "Lisa",
	"雷泽":    "Razor",
	"菲谢尔":   "Fischl",
	"九条裟罗":  "KujouSara",
	"久岐忍":   "KukiShinobu",
	"多莉":    "Dori",
	"赛索斯":   "Sethos",
	"克洛琳德":  "Clorinde",
	"欧洛伦":   "Ororon",
	"伊安珊":   "Iansan",
	"瓦雷莎":   "Varesa",
	"七七":    "Qiqi",
	"甘雨":    "Ganyu",
	"神里绫华":  "KamisatoAyaka",
	"优菈":    "Eula",
	"埃洛伊":   "Aloy",
	"申鹤":    "Shenhe",
	"凯亚":    "Kaeya",
	"重云":    "Chongyun",
	"迪奥娜":   "Diona",
	"罗莎莉亚":  "Rosaria",
	"莱依拉":   "Layla",
	"米卡":    "Mika",
	"菲米尼":   "Freminet",
	"娜维娅":   "Navia",
	"莱欧斯利":  "Wriothesley",
	"夏洛蒂":   "Charlotte",
	"茜特菈莉":  "Citlali",
	"爱可菲":   "Escoffier",
	"斯柯克":   "Skirk",
	"琴":     "Jean",
	"温迪":    "Venti",
	"魈":     "Xiao",
	"旅行者":   "Traveler",
	"枫原万叶":  "KaedeharaKazuha",
	"流浪者":   "Wanderer",
	"砂糖":    "Sucrose",
	"早柚":    "Sayu",
	"鹿野院平藏": "ShikanoinHeizou",
	"珐露珊":   "Faruzan",
	"琳妮特":   "Lynette",
	"闲云":    "Xianyun",
	"恰斯卡":   "Chasca",
	"蓝砚":    "LanYan",
	"梦见月瑞希": "YumemizukiMizuki",
	"伊法":    "Ifa",
	"钟离":    "Zhongli",
	"阿贝多":   "Albedo",
	"荒泷一斗":  "AratakiItto",
	"诺艾尔":   "Noelle",
	"凝光":    "Ningguang",
	"云堇":    "YunJin",
	"五郎":    "Gorou",
	"千织":    "Chiori",
	"卡齐娜":   "Kachina",
	"希诺宁":   "Xilonen",
	"提纳里":   "Tighnari",
	"纳西妲":   "Nahida",
	"柯莱":    "Collei",
	"白术":    "Baizhu",
	"卡维":    "Kaveh",
	"瑶瑶":    "Yaoyao",
	"艾尔海森":  "Alhaitham",
	"绮良良":   "Kirara",
	"艾梅莉埃":  "Emilie",
	"基尼奇":   "Kinich",
}
